package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/store"
)

var bookColumnList = []string{
	"id", "owner_id", "title", "author", "description", "cover_image_url",
	"is_for_sale", "is_for_trade", "price", "publication_year", "genre", "created_at", "updated_at",
}

var bookColumns = strings.Join(bookColumnList, ", ")

// bookReadQuery selects books aliased b along with the owner's summary.
var bookReadQuery = `SELECT ` + qualifiedColumns("b", bookColumnList) + `, ` +
	qualifiedColumns("o", userSummaryColumns) + `
	FROM books b JOIN users o ON o.id = b.owner_id`

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the BookStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{
		db:     tx,
		logger: s.logger,
	}
}

func bookDest(book *domain.Book) []any {
	return []any{
		&book.ID,
		&book.OwnerID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.CoverImageURL,
		&book.IsForSale,
		&book.IsForTrade,
		&book.Price,
		&book.PublicationYear,
		&book.Genre,
		&book.CreatedAt,
		&book.UpdatedAt,
	}
}

// scanBook reads a row produced by bookReadQuery.
func scanBook(row rowScanner) (*domain.Book, error) {
	var book domain.Book
	var owner domain.UserSummary
	if err := row.Scan(append(bookDest(&book), userSummaryDest(&owner)...)...); err != nil {
		return nil, err
	}
	book.Owner = &owner
	return &book, nil
}

// Create implements store.BookStore.Create
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Description,
		book.CoverImageURL,
		book.IsForSale,
		book.IsForTrade,
		book.Price,
		book.PublicationYear,
		book.Genre,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during book creation",
				slog.String("book_id", book.ID.String()),
				slog.String("owner_id", book.OwnerID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, book.OwnerID)
		}
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return MapError(err)
	}

	log.Info("book created successfully",
		slog.String("book_id", book.ID.String()),
		slog.String("owner_id", book.OwnerID.String()))
	return nil
}

// GetByID implements store.BookStore.GetByID
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := bookReadQuery + ` WHERE b.id = $1`
	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("book not found", slog.String("book_id", id.String()))
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book by ID",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return nil, err
	}

	return book, nil
}

// buildBookFilter renders the WHERE clause and arguments for filter against
// the b alias of bookReadQuery.
func buildBookFilter(filter domain.BookFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", n, n))
	}
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		add("b.genre = $%d", genre)
	}
	if filter.ForSale != nil {
		add("b.is_for_sale = $%d", *filter.ForSale)
	}
	if filter.ForTrade != nil {
		add("b.is_for_trade = $%d", *filter.ForTrade)
	}
	if filter.OwnerID != nil {
		add("b.owner_id = $%d", *filter.OwnerID)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List implements store.BookStore.List
func (s *PostgresBookStore) List(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildBookFilter(filter)
	query := bookReadQuery + where + ` ORDER BY b.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list books", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error("failed to scan book row", slog.String("error", err.Error()))
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed books", slog.Int("count", len(books)))
	return books, nil
}

// Update implements store.BookStore.Update
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during update",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	book.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE books
		SET title = $1, author = $2, description = $3, cover_image_url = $4,
			is_for_sale = $5, is_for_trade = $6, price = $7, publication_year = $8,
			genre = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		book.Title,
		book.Author,
		book.Description,
		book.CoverImageURL,
		book.IsForSale,
		book.IsForTrade,
		book.Price,
		book.PublicationYear,
		book.Genre,
		book.UpdatedAt,
		book.ID,
	)
	if err != nil {
		log.Error("failed to update book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return MapError(err)
	}

	if err := rowsAffected(result, store.ErrBookNotFound); err != nil {
		log.Debug("book not found for update", slog.String("book_id", book.ID.String()))
		return err
	}

	log.Info("book updated successfully", slog.String("book_id", book.ID.String()))
	return nil
}

// Delete implements store.BookStore.Delete
// Trades referencing the book are removed by cascading foreign keys.
func (s *PostgresBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete book",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return MapError(err)
	}

	if err := rowsAffected(result, store.ErrBookNotFound); err != nil {
		log.Debug("book not found for delete", slog.String("book_id", id.String()))
		return err
	}

	log.Info("book deleted successfully", slog.String("book_id", id.String()))
	return nil
}
