package book

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Service provides book-related business logic.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new book service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates in and persists it. Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	if err := Validate(in); err != nil {
		return Book{}, err
	}

	var created Book
	err := s.repo.WithinTx(ctx, func(st Store) error {
		var err error
		created, err = st.Insert(ctx, in)
		return err
	})
	if err != nil {
		return Book{}, err
	}

	s.logger.Debug("book created", zap.Int64("book.id", created.ID))
	return created, nil
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	var found Book
	err := s.repo.View(ctx, func(st Store) error {
		var err error
		found, err = st.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return Book{}, notFound(id, err)
	}
	return found, nil
}

// Update replaces only the fields supplied in p. Updated fields are not re-validated.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	var updated Book
	err := s.repo.WithinTx(ctx, func(st Store) error {
		current, err := st.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			updated = current
			return nil
		}
		updated, err = st.Update(ctx, id, p)
		return err
	})
	if err != nil {
		return Book{}, notFound(id, err)
	}

	s.logger.Debug("book updated", zap.Int64("book.id", id))
	return updated, nil
}

// Delete removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithinTx(ctx, func(st Store) error {
		if _, err := st.GetByID(ctx, id); err != nil {
			return err
		}
		deleted, err := st.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return notFound(id, err)
	}

	s.logger.Debug("book deleted", zap.Int64("book.id", id))
	return nil
}

// List returns every book. The result is empty, never nil, when there are none.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	var books []Book
	err := s.repo.View(ctx, func(st Store) error {
		var err error
		books, err = st.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// notFound turns a bare ErrNotFound into a NotFoundError carrying id.
func notFound(id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return &NotFoundError{ID: id}
	}
	return err
}
