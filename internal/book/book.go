package book

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidInput is returned when a candidate book fails validation.
	ErrInvalidInput = errors.New("invalid input data")
)

// Book represents a persisted book record.
type Book struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	Year   int    `json:"year" db:"year"`
	ISBN   string `json:"isbn" db:"isbn"`
}

// Input is the payload used to create a book.
// Year is a pointer so a missing year is reported instead of defaulting to 0.
type Input struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Year   *int   `json:"year" validate:"required,gte=0"`
	ISBN   string `json:"isbn" validate:"required,isbn_shape"`
}

// Patch holds the fields of a partial update. A nil field was not supplied
// and is left untouched.
type Patch struct {
	Title  *string `json:"title,omitempty"`
	Author *string `json:"author,omitempty"`
	Year   *int    `json:"year,omitempty"`
	ISBN   *string `json:"isbn,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil && p.ISBN == nil
}

// Apply returns b with the supplied fields of p replaced.
func (p Patch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	return b
}

// NotFoundError carries the id that was looked up.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Book with id %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
