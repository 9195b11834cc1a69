package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/handler"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/repository/memory"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlink/pkg/config"
	"github.com/wadjakorntonsri/shortlink/pkg/core/services"
	"github.com/wadjakorntonsri/shortlink/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.AppEnv, cfg.LogLevel)

	// Initialize Store
	store := memory.NewStore(memory.WithMaxAttempts(cfg.MaxCodeAttempts))

	opts := []services.Option{services.WithRecentLimit(cfg.RecentLimit)}

	// Optional visit log
	if cfg.VisitsDatabaseURL != "" {
		visits, err := sqlite.NewVisitRepository(cfg.VisitsDatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open visit log database")
		}
		defer visits.Close()
		opts = append(opts, services.WithVisitRepository(visits))
		log.Info().Msg("Visit log enabled")
	}

	// Initialize Service
	service := services.NewLinkService(store, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service.StartJanitor(ctx, cfg.SweepInterval)

	// Initialize Router
	mux := handler.NewRouter(cfg, service)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("base_url", cfg.BaseURL).
			Dur("sweep_interval", cfg.SweepInterval).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
