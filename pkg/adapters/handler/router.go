package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wadjakorntonsri/shortlink/pkg/config"
	"github.com/wadjakorntonsri/shortlink/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.LinkService) http.Handler {
	h := NewHTTPHandler(service, cfg.BaseURL)
	mw := NewMiddleware()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	// API Routes
	mux.HandleFunc("POST /api/shorten", h.Create)
	mux.HandleFunc("GET /api/stats", h.Overview)
	mux.HandleFunc("GET /api/stats/{short_code}", h.Stats)
	mux.HandleFunc("DELETE /api/delete/{short_code}", h.Delete)
	mux.HandleFunc("GET /api/qr/{short_code}", h.QR)

	// Redirect
	mux.HandleFunc("GET /{short_code}", h.Redirect)

	return mw.RequestLogger(mw.Recover(mux))
}
