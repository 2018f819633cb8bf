package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
)

// BookStore defines the interface for the book catalog.
type BookStore interface {
	// Create saves a new book.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique ID.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// List returns books matching the filter, newest first.
	List(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)

	// Update saves the descriptive and listing fields of an existing book.
	// The owner is not changed by Update.
	// Returns ErrBookNotFound if the book does not exist.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book.
	// Trades referencing the book are removed with it.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new BookStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BookStore
}
