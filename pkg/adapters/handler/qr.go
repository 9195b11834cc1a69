package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

var qrLevels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}

// QR renders a PNG QR code pointing at the short URL of a live link
func (h *HTTPHandler) QR(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")

	if _, err := h.service.GetLink(r.Context(), code); err != nil {
		sendServiceError(w, err, "Short URL does not exist")
		return
	}

	query := r.URL.Query()

	size := defaultQRSize
	if sizeStr := query.Get("size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil {
			sendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsed < minQRSize || parsed > maxQRSize {
			sendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsed
	}

	levelName := query.Get("level")
	if levelName == "" {
		levelName = "medium"
	}
	level, ok := qrLevels[levelName]
	if !ok {
		sendJSONError(w, http.StatusBadRequest, errors.New("invalid level parameter"), "Level must be: low, medium, high, or highest")
		return
	}

	fullURL := h.shortURL(code)
	png, err := qrcode.Encode(fullURL, level, size)
	if err != nil {
		log.Error().Err(err).Str("url", fullURL).Msg("Failed to generate QR code")
		sendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
		return
	}

	log.Debug().
		Str("short_code", code).
		Int("size", size).
		Str("level", levelName).
		Msg("QR code generated")
}
