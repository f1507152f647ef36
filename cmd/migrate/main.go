package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bookcrud/db"
	"bookcrud/internal/platform/config"
	"bookcrud/internal/platform/database"
	"bookcrud/internal/platform/logger"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Flusher(log)()

	if *command == "create" {
		migrateCfg, err := loadMigrateConfig()
		if err != nil {
			log.Fatal("failed to load configuration", zap.Error(err))
		}
		if err := createMigration(migrateCfg.Dir, *name); err != nil {
			log.Fatal("failed to create migration", zap.Error(err))
		}
		log.Info("migration created", zap.String("migration.name", *name), zap.String("migration.dir", migrateCfg.Dir))
		return
	}

	if err := migrate(context.Background(), cfg.Database, *command, log); err != nil {
		log.Fatal("migration failed", zap.String("migration.command", *command), zap.Error(err))
	}
}

func createMigration(dir, name string) error {
	if name == "" {
		return errors.New("name is required for 'create' command")
	}
	return goose.Create(nil, dir, name, "sql")
}

func migrate(ctx context.Context, cfg config.Database, command string, log *zap.Logger) error {
	pool, err := database.OpenPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	switch command {
	case "up":
		results, err := db.Up(ctx, sqlDB)
		if err != nil {
			return err
		}
		for _, res := range results {
			log.Info("migration applied", zap.Int64("migration.version", res.Source.Version), zap.Duration("duration", res.Duration))
		}
		log.Info("migrations applied successfully", zap.Int("migration.count", len(results)))
	case "down":
		res, err := db.Down(ctx, sqlDB)
		if err != nil {
			return err
		}
		log.Info("migration rolled back", zap.Int64("migration.version", res.Source.Version))
	case "status":
		statuses, err := db.Status(ctx, sqlDB)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			log.Info("migration status",
				zap.Int64("migration.version", st.Source.Version),
				zap.String("migration.path", st.Source.Path),
				zap.String("migration.state", string(st.State)),
			)
		}
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, create", command)
	}
	return nil
}
