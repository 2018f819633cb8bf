package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/store"
	"github.com/shopspring/decimal"
)

// BookInput holds the fields of a new book.
type BookInput struct {
	Title           string
	Author          string
	Description     string
	CoverImageURL   string
	IsForSale       bool
	IsForTrade      bool
	Price           decimal.NullDecimal
	PublicationYear int
	Genre           string
}

// BookUpdate carries the book fields to change. Nil fields are kept; a
// non-nil Price with Valid false clears the price.
type BookUpdate struct {
	Title           *string
	Author          *string
	Description     *string
	CoverImageURL   *string
	IsForSale       *bool
	IsForTrade      *bool
	Price           *decimal.NullDecimal
	PublicationYear *int
	Genre           *string
}

// BookService manages the book catalog.
type BookService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)
	// CreateBook adds a book owned by ownerID.
	CreateBook(ctx context.Context, ownerID uuid.UUID, input BookInput) (*domain.Book, error)
	// UpdateBook and DeleteBook require actorID to own the book or be an
	// admin, else ErrNotOwned.
	UpdateBook(ctx context.Context, actorID, bookID uuid.UUID, update BookUpdate) (*domain.Book, error)
	DeleteBook(ctx context.Context, actorID, bookID uuid.UUID) error
	ListUserBooks(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)
}

type bookServiceImpl struct {
	books  store.BookStore
	users  store.UserStore
	db     *sql.DB
	logger *slog.Logger
}

// NewBookService creates a BookService.
func NewBookService(books store.BookStore, users store.UserStore, db *sql.DB, logger *slog.Logger) BookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookServiceImpl{
		books:  books,
		users:  users,
		db:     db,
		logger: logger.With(slog.String("component", "book_service")),
	}
}

func (s *bookServiceImpl) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	books, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (s *bookServiceImpl) ListUserBooks(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	return s.ListBooks(ctx, domain.BookFilter{OwnerID: &ownerID})
}

func (s *bookServiceImpl) GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve book: %w", err)
	}
	return book, nil
}

func (s *bookServiceImpl) CreateBook(ctx context.Context, ownerID uuid.UUID, input BookInput) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := domain.NewBook(ownerID, input.Title, input.Author, input.Description, input.PublicationYear)
	if err != nil {
		return nil, err
	}
	book.CoverImageURL = strings.TrimSpace(input.CoverImageURL)
	book.Genre = strings.TrimSpace(input.Genre)
	book.IsForSale = input.IsForSale
	book.IsForTrade = input.IsForTrade
	book.Price = input.Price
	book.ApplyDefaults()
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.books.Create(ctx, book); err != nil {
		log.Error("failed to create book", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	log.Info("book created",
		slog.String("book_id", book.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return book, nil
}

// authorize loads the book and checks that actorID may change it.
func (s *bookServiceImpl) authorize(
	ctx context.Context,
	books store.BookStore,
	users store.UserStore,
	actorID, bookID uuid.UUID,
) (*domain.Book, error) {
	book, err := books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.IsOwnedBy(actorID) {
		return book, nil
	}

	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotOwned
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrNotOwned
	}
	return book, nil
}

func (u BookUpdate) apply(book *domain.Book) {
	if u.Title != nil {
		book.Title = strings.TrimSpace(*u.Title)
	}
	if u.Author != nil {
		book.Author = strings.TrimSpace(*u.Author)
	}
	if u.Description != nil {
		book.Description = strings.TrimSpace(*u.Description)
	}
	if u.CoverImageURL != nil {
		book.CoverImageURL = strings.TrimSpace(*u.CoverImageURL)
	}
	if u.IsForSale != nil {
		book.IsForSale = *u.IsForSale
	}
	if u.IsForTrade != nil {
		book.IsForTrade = *u.IsForTrade
	}
	if u.Price != nil {
		book.Price = *u.Price
	}
	if u.PublicationYear != nil {
		book.PublicationYear = *u.PublicationYear
	}
	if u.Genre != nil {
		book.Genre = strings.TrimSpace(*u.Genre)
	}
	book.ApplyDefaults()
}

func (s *bookServiceImpl) UpdateBook(
	ctx context.Context,
	actorID, bookID uuid.UUID,
	update BookUpdate,
) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("book_id", bookID.String()),
		slog.String("actor_id", actorID.String()))

	var updated *domain.Book
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		books := s.books.WithTx(tx)
		book, err := s.authorize(ctx, books, s.users.WithTx(tx), actorID, bookID)
		if err != nil {
			return err
		}

		update.apply(book)
		if err := book.Validate(); err != nil {
			return err
		}
		if err := books.Update(ctx, book); err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotOwned) {
			log.Warn("book update by non-owner")
			return nil, err
		}
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	log.Info("book updated")
	return updated, nil
}

func (s *bookServiceImpl) DeleteBook(ctx context.Context, actorID, bookID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("book_id", bookID.String()),
		slog.String("actor_id", actorID.String()))

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		books := s.books.WithTx(tx)
		if _, err := s.authorize(ctx, books, s.users.WithTx(tx), actorID, bookID); err != nil {
			return err
		}
		return books.Delete(ctx, bookID)
	})
	if err != nil {
		if errors.Is(err, ErrNotOwned) {
			log.Warn("book delete by non-owner")
			return err
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	log.Info("book deleted")
	return nil
}
