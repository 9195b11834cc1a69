package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/wadjakorntonsri/shortlink/pkg/core/domain"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func sendJSONError(w http.ResponseWriter, statusCode int, err error, message string) {
	sendJSON(w, statusCode, ErrorResponse{Error: err.Error(), Message: message})
}

func sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCodeAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError writes err with its mapped status. Internal errors are not echoed to clients.
func sendServiceError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(message)
		sendJSONError(w, status, errors.New("internal server error"), message)
		return
	}
	sendJSONError(w, status, err, message)
}
