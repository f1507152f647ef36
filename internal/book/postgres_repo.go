package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcrud/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(pool *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: pool, timeout: timeout}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(r.db)
	defer sqlDB.Close()

	if _, err := db.Up(ctx, sqlDB); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) WithinTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&pgStore{tx: tx, timeout: r.timeout})
	})
}

func (r *PostgresRepo) View(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		return fn(&pgStore{tx: tx, timeout: r.timeout})
	})
}

// pgStore runs statements against one open transaction.
type pgStore struct {
	tx      pgx.Tx
	timeout time.Duration
}

func (s *pgStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *pgStore) queryOne(ctx context.Context, query string, args []any) (Book, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var b Book
	err := s.tx.QueryRow(timeoutCtx, query, args...).Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.ISBN)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *pgStore) Insert(ctx context.Context, in Input) (Book, error) {
	query, args, err := insertQuery(in)
	if err != nil {
		return Book{}, fmt.Errorf("build insert: %w", err)
	}
	b, err := s.queryOne(ctx, query, args)
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (s *pgStore) GetByID(ctx context.Context, id int64) (Book, error) {
	query, args, err := selectByIDQuery(id)
	if err != nil {
		return Book{}, fmt.Errorf("build select: %w", err)
	}
	b, err := s.queryOne(ctx, query, args)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, err
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (s *pgStore) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	if p.IsEmpty() {
		return s.GetByID(ctx, id)
	}
	query, args, err := updateQuery(id, p)
	if err != nil {
		return Book{}, fmt.Errorf("build update: %w", err)
	}
	b, err := s.queryOne(ctx, query, args)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, err
		}
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return b, nil
}

func (s *pgStore) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := deleteQuery(id)
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	tag, err := s.tx.Exec(timeoutCtx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *pgStore) List(ctx context.Context) ([]Book, error) {
	query, args, err := selectAllQuery()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.tx.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.ISBN); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
