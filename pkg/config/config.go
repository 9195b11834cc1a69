package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string
	AppEnv            string
	LogLevel          string
	BaseURL           string
	VisitsDatabaseURL string // empty disables the visit log
	SweepInterval     time.Duration
	MaxCodeAttempts   int
	RecentLimit       int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:              v.GetString("PORT"),
		AppEnv:            v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		BaseURL:           v.GetString("BASE_URL"),
		VisitsDatabaseURL: v.GetString("VISITS_DATABASE_URL"),
		SweepInterval:     v.GetDuration("SWEEP_INTERVAL"),
		MaxCodeAttempts:   v.GetInt("MAX_CODE_ATTEMPTS"),
		RecentLimit:       v.GetInt("RECENT_LIMIT"),
		ReadTimeout:       v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:      v.GetDuration("WRITE_TIMEOUT"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("VISITS_DATABASE_URL", "")
	v.SetDefault("SWEEP_INTERVAL", "0s") // lazy expiry only
	v.SetDefault("MAX_CODE_ATTEMPTS", 16)
	v.SetDefault("RECENT_LIMIT", 10)
	v.SetDefault("READ_TIMEOUT", "5s")
	v.SetDefault("WRITE_TIMEOUT", "10s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
}
