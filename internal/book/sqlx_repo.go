package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookcrud/db"

	"github.com/jmoiron/sqlx"
)

// SQLXRepo stores books through database/sql, for deployments that use the
// lib/pq driver instead of a pgx pool.
type SQLXRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewSQLXRepo(sqlxDB *sqlx.DB, timeout time.Duration) *SQLXRepo {
	return &SQLXRepo{db: sqlxDB, timeout: timeout}
}

func (r *SQLXRepo) EnsureSchema(ctx context.Context) error {
	if _, err := db.Up(ctx, r.db.DB); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *SQLXRepo) WithinTx(ctx context.Context, fn func(Store) error) error {
	return r.runTx(ctx, nil, fn)
}

func (r *SQLXRepo) View(ctx context.Context, fn func(Store) error) error {
	return r.runTx(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (r *SQLXRepo) runTx(ctx context.Context, opts *sql.TxOptions, fn func(Store) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&sqlxStore{tx: tx, timeout: r.timeout}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type sqlxStore struct {
	tx      *sqlx.Tx
	timeout time.Duration
}

func (s *sqlxStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *sqlxStore) getOne(ctx context.Context, query string, args []any) (Book, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var b Book
	if err := s.tx.GetContext(timeoutCtx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *sqlxStore) Insert(ctx context.Context, in Input) (Book, error) {
	query, args, err := insertQuery(in)
	if err != nil {
		return Book{}, fmt.Errorf("build insert: %w", err)
	}
	b, err := s.getOne(ctx, query, args)
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (s *sqlxStore) GetByID(ctx context.Context, id int64) (Book, error) {
	query, args, err := selectByIDQuery(id)
	if err != nil {
		return Book{}, fmt.Errorf("build select: %w", err)
	}
	b, err := s.getOne(ctx, query, args)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, err
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (s *sqlxStore) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	if p.IsEmpty() {
		return s.GetByID(ctx, id)
	}
	query, args, err := updateQuery(id, p)
	if err != nil {
		return Book{}, fmt.Errorf("build update: %w", err)
	}
	b, err := s.getOne(ctx, query, args)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, err
		}
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return b, nil
}

func (s *sqlxStore) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := deleteQuery(id)
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.tx.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *sqlxStore) List(ctx context.Context) ([]Book, error) {
	query, args, err := selectAllQuery()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	out := []Book{}
	if err := s.tx.SelectContext(timeoutCtx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}
