// Package database opens the configured store and hands back a book.Repository.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // database/sql driver for the sqlx store
	"go.uber.org/zap"

	"bookcrud/internal/book"
	"bookcrud/internal/platform/config"
)

const pingTimeout = 2 * time.Second

// Store is an opened backend.
type Store struct {
	Repo book.Repository
	// Ping reports whether the backend is reachable.
	Ping func(ctx context.Context) error
	// Close releases the backend's connections.
	Close func()
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.Database, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPGX:
		pool, err := OpenPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection OK", zap.String("db.driver", cfg.Driver), zap.String("db.dsn", RedactDSN(cfg.DSN)))
		return &Store{
			Repo:  book.NewPostgresRepo(pool, cfg.QueryTimeout),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil

	case config.DriverSQLX:
		db, err := OpenSQLX(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection OK", zap.String("db.driver", cfg.Driver), zap.String("db.dsn", RedactDSN(cfg.DSN)))
		return &Store{
			Repo:  book.NewSQLXRepo(db, cfg.QueryTimeout),
			Ping:  db.PingContext,
			Close: func() { _ = db.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return &Store{
			Repo:  book.NewMemoryRepo(),
			Ping:  func(context.Context) error { return nil },
			Close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenPool creates and pings a pgx pool.
func OpenPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("cannot parse dsn (%s): %w", RedactDSN(cfg.DSN), err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", RedactDSN(cfg.DSN), err)
	}
	return pool, nil
}

// OpenSQLX opens a database/sql handle through lib/pq and pings it.
func OpenSQLX(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("cannot open database (%s): %w", RedactDSN(cfg.DSN), err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", RedactDSN(cfg.DSN), err)
	}
	return db, nil
}

// RedactDSN hides the credentials of a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
