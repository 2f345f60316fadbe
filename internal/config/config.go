package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	OutDir              string `env:"DATALCHEMY_OUT_DIR" env-default:"out"`
	PlansDir            string `env:"DATALCHEMY_PLANS_DIR" env-default:"./plans"`
	AssetsDir           string `env:"DATALCHEMY_ASSETS_DIR" env-default:"assets"`
	RunsDBPath          string `env:"DATALCHEMY_RUNS_DB" env-default:"./datalchemy.db"`
	RunsDBDSN           string `env:"DATALCHEMY_DB" env-default:""`
	LogLevel            string `env:"DATALCHEMY_LOG_LEVEL" env-default:"info"`
	BindAddr            string `env:"DATALCHEMY_BIND_ADDR" env-default:":8080"`
	Strict              bool   `env:"DATALCHEMY_STRICT" env-default:"false"`
	MaxAttemptsRow      int    `env:"DATALCHEMY_MAX_ATTEMPTS_ROW" env-default:"50"`
	MaxAttemptsTable    int    `env:"DATALCHEMY_MAX_ATTEMPTS_TABLE" env-default:"5"`
	AutoGenerateParents bool   `env:"DATALCHEMY_AUTO_GENERATE_PARENTS" env-default:"true"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.MaxAttemptsRow <= 0 {
		return nil, fmt.Errorf("DATALCHEMY_MAX_ATTEMPTS_ROW must be positive")
	}
	if cfg.MaxAttemptsTable <= 0 {
		return nil, fmt.Errorf("DATALCHEMY_MAX_ATTEMPTS_TABLE must be positive")
	}
	return &cfg, nil
}
