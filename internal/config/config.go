package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"rps-backend/internal/engine"
	"rps-backend/internal/models"
)

// Config holds all server configuration. Game rules (capacity, best-of,
// tie-break, release pacing) are fixed here per deployment; mixing policies
// inside one tournament is not supported.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`

	StoreBackend      string `env:"STORE_BACKEND" envDefault:"memory"`
	DataDir           string `env:"DATA_DIR" envDefault:"./data"`
	GCPProjectID      string `env:"GCP_PROJECT_ID"`
	FirestoreDatabase string `env:"FIRESTORE_DATABASE"`
	DatabaseURL       string `env:"DATABASE_URL"`

	Capacity    int    `env:"TOURNAMENT_CAPACITY" envDefault:"8"`
	BestOf      int    `env:"MATCH_BEST_OF" envDefault:"3"`
	Tiebreak    string `env:"TIEBREAK_POLICY" envDefault:"timestamp"`
	AutoRelease bool   `env:"AUTO_RELEASE" envDefault:"false"`
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if _, err := cfg.EngineOptions(); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case "memory", "file", "firestore", "postgres":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (memory, file, firestore, postgres)", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "firestore" && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required with STORE_BACKEND=firestore")
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required with STORE_BACKEND=postgres")
	}

	return &cfg, nil
}

// EngineOptions translates the rule settings into validated engine options.
func (c *Config) EngineOptions() (engine.Options, error) {
	opts := engine.Options{
		Capacity:    c.Capacity,
		BestOf:      c.BestOf,
		Tiebreak:    models.TiebreakPolicy(c.Tiebreak),
		AutoRelease: c.AutoRelease,
	}
	if err := opts.Validate(); err != nil {
		return engine.Options{}, err
	}
	return opts, nil
}
