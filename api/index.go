package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/repository/memory"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlink/pkg/config"
	"github.com/wadjakorntonsri/shortlink/pkg/core/services"
	"github.com/wadjakorntonsri/shortlink/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger.Initialize(cfg.AppEnv, cfg.LogLevel)

	// Note: links live in this instance's memory only; each cold start begins empty
	store := memory.NewStore(memory.WithMaxAttempts(cfg.MaxCodeAttempts))

	opts := []services.Option{services.WithRecentLimit(cfg.RecentLimit)}
	if cfg.VisitsDatabaseURL != "" {
		visits, err := sqlite.NewVisitRepository(cfg.VisitsDatabaseURL)
		if err != nil {
			// Visit log is optional, keep serving redirects without it
			log.Error().Err(err).Msg("Failed to open visit log database")
		} else {
			opts = append(opts, services.WithVisitRepository(visits))
		}
	}

	service := services.NewLinkService(store, opts...)
	mux = handler.NewRouter(cfg, service)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
