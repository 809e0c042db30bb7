package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/playperu/puzzlehunt/internal/hunt"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/puzzlehunt.db"` // file path, :memory: or libsql:// URL
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL enables cross-process event fan-out when set.
	RedisURL string `env:"REDIS_URL"`

	PreviousMode      hunt.PreviousMode `env:"PREVIOUS_MODE" envDefault:"decrement"`
	StrictCodes       bool              `env:"BOOKING_CODE_STRICT" envDefault:"false"`
	AdminEmail        string            `env:"ADMIN_EMAIL" envDefault:"admin@playperu.com"`
	AdminPasswordHash string            `env:"ADMIN_PASSWORD_HASH"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	SeedDemo     bool   `env:"SEED_DEMO" envDefault:"false"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if !cfg.PreviousMode.Valid() {
		return nil, fmt.Errorf("PREVIOUS_MODE must be %q or %q, got %q",
			hunt.PreviousDecrement, hunt.PreviousCatalog, cfg.PreviousMode)
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
