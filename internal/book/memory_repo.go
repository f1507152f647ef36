package book

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var errReadOnly = errors.New("write in read-only unit of work")

// MemoryRepo keeps books in process memory. Writing units of work are
// serialized and operate on a copy of the data that replaces the original only
// on success. Read-only units of work share the live data and run concurrently.
type MemoryRepo struct {
	mu     sync.RWMutex
	books  map[int64]Book
	nextID int64
}

// NewMemoryRepo constructs a MemoryRepo seeded with the provided books.
func NewMemoryRepo(seed ...Book) *MemoryRepo {
	repo := &MemoryRepo{
		books:  make(map[int64]Book, len(seed)),
		nextID: 1,
	}
	for _, b := range seed {
		repo.books[b.ID] = b
		if b.ID >= repo.nextID {
			repo.nextID = b.ID + 1
		}
	}
	return repo
}

func (r *MemoryRepo) EnsureSchema(_ context.Context) error {
	return nil
}

func (r *MemoryRepo) WithinTx(ctx context.Context, fn func(Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := &memStore{
		books:  make(map[int64]Book, len(r.books)),
		nextID: r.nextID,
	}
	for id, b := range r.books {
		work.books[id] = b
	}

	if err := fn(work); err != nil {
		return err
	}

	r.books = work.books
	r.nextID = work.nextID
	return nil
}

func (r *MemoryRepo) View(ctx context.Context, fn func(Store) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memStore{books: r.books, nextID: r.nextID, readOnly: true})
}

// memStore is the data handed to one unit of work: a private copy for
// WithinTx, the live map for View.
type memStore struct {
	books    map[int64]Book
	nextID   int64
	readOnly bool
}

func (s *memStore) Insert(_ context.Context, in Input) (Book, error) {
	if s.readOnly {
		return Book{}, errReadOnly
	}
	b := Book{
		ID:     s.nextID,
		Title:  in.Title,
		Author: in.Author,
		ISBN:   in.ISBN,
	}
	if in.Year != nil {
		b.Year = *in.Year
	}
	s.nextID++
	s.books[b.ID] = b
	return b, nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (Book, error) {
	b, ok := s.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (s *memStore) Update(_ context.Context, id int64, p Patch) (Book, error) {
	if s.readOnly {
		return Book{}, errReadOnly
	}
	b, ok := s.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	b = p.Apply(b)
	s.books[id] = b
	return b, nil
}

func (s *memStore) Delete(_ context.Context, id int64) (bool, error) {
	if s.readOnly {
		return false, errReadOnly
	}
	if _, ok := s.books[id]; !ok {
		return false, nil
	}
	delete(s.books, id)
	return true, nil
}

func (s *memStore) List(_ context.Context) ([]Book, error) {
	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}
