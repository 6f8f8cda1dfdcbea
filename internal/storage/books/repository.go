package books

import (
	"context"
	"errors"

	"bookstore/internal/types"
)

var ErrDuplicateIsbn = errors.New("book with this isbn already exists")

// Mutable columns, i.e. everything but isbn.
var MutableColumns = []string{"amazon_url", "author", "language", "pages", "publisher", "title", "year"}

// Fields holds the columns to overwrite on update, keyed by column name.
type Fields map[string]any

type Repository interface {
	// List returns all books ordered by title, never nil.
	List(ctx context.Context) ([]*types.Book, error)
	// GetByIsbn returns nil without error when there is no such book.
	GetByIsbn(ctx context.Context, isbn string) (*types.Book, error)

	// Create fails with ErrDuplicateIsbn when isbn is taken.
	Create(ctx context.Context, book *types.Book) (*types.Book, error)
	// Update merges fields into the stored row and returns the result, or nil when there is no such book.
	Update(ctx context.Context, isbn string, fields Fields) (*types.Book, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, isbn string) (bool, error)
}
