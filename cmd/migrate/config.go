package main

import (
	"fmt"

	"bookcrud/db"
	"bookcrud/internal/platform/config"

	"github.com/kelseyhightower/envconfig"
)

// migrateConfig holds the settings only the migrate command reads.
type migrateConfig struct {
	// Dir receives files written by "create"; up/down/status use the embedded set.
	Dir string `envconfig:"MIGRATIONS_DIR"`
}

func loadMigrateConfig() (migrateConfig, error) {
	var cfg migrateConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load migrate configuration: %w", err)
	}
	if cfg.Dir == "" {
		cfg.Dir = db.MigrationsDir
	}
	return cfg, nil
}
