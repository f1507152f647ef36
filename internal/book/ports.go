package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Store defines the book operations available inside one unit of work.
type Store interface {
	Insert(ctx context.Context, in Input) (Book, error)
	// GetByID returns ErrNotFound when no book has the id.
	GetByID(ctx context.Context, id int64) (Book, error)
	// Update applies only the supplied fields. Returns ErrNotFound when absent.
	Update(ctx context.Context, id int64, p Patch) (Book, error)
	// Delete reports whether a book existed and was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	// List returns every book ordered by id.
	List(ctx context.Context) ([]Book, error)
}

// Repository defines the contract for book data storage.
type Repository interface {
	// EnsureSchema creates the books table if it is absent. Safe to call twice.
	EnsureSchema(ctx context.Context) error
	// WithinTx runs fn in a single unit of work. The work is committed when fn
	// returns nil and rolled back otherwise; it is released on every path.
	WithinTx(ctx context.Context, fn func(Store) error) error
	// View runs fn in a read-only unit of work. Writes through the Store fail.
	View(ctx context.Context, fn func(Store) error) error
}
