package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wadjakorntonsri/shortlink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlink/pkg/config"
	"github.com/wadjakorntonsri/shortlink/pkg/logger"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)
	statsCode := statsCmd.String("code", "", "short code to report on")

	if len(os.Args) < 2 {
		fmt.Println("expected 'export' or 'stats' subcommands")
		os.Exit(1)
	}

	cfg := config.Load()
	logger.InitializeTo(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	if cfg.VisitsDatabaseURL == "" {
		log.Fatal().Msg("VISITS_DATABASE_URL is not set")
	}
	repo, err := sqlite.NewVisitRepository(cfg.VisitsDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to db")
	}
	defer repo.Close()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(repo)
	case "stats":
		statsCmd.Parse(os.Args[2:])
		if *statsCode == "" {
			statsCmd.PrintDefaults()
			os.Exit(1)
		}
		doStats(repo, *statsCode)
	default:
		fmt.Println("expected 'export' or 'stats' subcommands")
		os.Exit(1)
	}
}

func doExport(repo *sqlite.VisitRepository) {
	visits, err := repo.Dump(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	writeJSON(visits)
	log.Info().Int("count", len(visits)).Msg("Exported visits")
}

func doStats(repo *sqlite.VisitRepository, code string) {
	stats, err := repo.GetVisitStats(context.Background(), code)
	if err != nil {
		log.Fatal().Err(err).Str("short_code", code).Msg("Stats failed")
	}
	writeJSON(stats)
}

func writeJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Encode failed")
	}
}
