// Package db embeds the SQL migrations and applies them with goose.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// MigrationsDir is the migrations path relative to the repository root.
const MigrationsDir = "db/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations returns the embedded migration files rooted at the migrations dir.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

func newProvider(sqlDB *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, sqlDB, Migrations())
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

// Up applies every pending migration. Applying an up-to-date schema is a no-op.
func Up(ctx context.Context, sqlDB *sql.DB) ([]*goose.MigrationResult, error) {
	p, err := newProvider(sqlDB)
	if err != nil {
		return nil, err
	}
	return p.Up(ctx)
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, sqlDB *sql.DB) (*goose.MigrationResult, error) {
	p, err := newProvider(sqlDB)
	if err != nil {
		return nil, err
	}
	return p.Down(ctx)
}

// Status reports the state of every known migration.
func Status(ctx context.Context, sqlDB *sql.DB) ([]*goose.MigrationStatus, error) {
	p, err := newProvider(sqlDB)
	if err != nil {
		return nil, err
	}
	return p.Status(ctx)
}
