package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// InsertUser writes a user row with a unique name and returns it.
// The password hash is a placeholder; use the auth service for login tests.
func InsertUser(t *testing.T, db store.DBTX, role domain.Role) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := &domain.User{
		ID:               uuid.New(),
		Name:             fmt.Sprintf("user%s", uuid.NewString()[:8]),
		HashedPassword:   "$2a$04$placeholderplaceholderplaceholderplaceholderpla",
		Balance:          domain.DefaultStartingBalance,
		Role:             role,
		AvatarURL:        domain.DefaultAvatarURL,
		RegistrationDate: now.Truncate(24 * time.Hour),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := db.ExecContext(context.Background(), `
		INSERT INTO users (id, name, hashed_password, balance, role, avatar_url, bio,
			registration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Name, user.HashedPassword, user.Balance, string(user.Role),
		user.AvatarURL, user.Bio, user.RegistrationDate, user.CreatedAt, user.UpdatedAt,
	)
	require.NoError(t, err, "Failed to insert test user")
	return user
}

// InsertBook writes a book owned by ownerID and returns it.
func InsertBook(t *testing.T, db store.DBTX, ownerID uuid.UUID, forTrade bool) *domain.Book {
	t.Helper()

	now := time.Now().UTC()
	book := &domain.Book{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Title:           "Test Book " + uuid.NewString()[:8],
		Author:          "Test Author",
		Description:     "A book created for tests",
		CoverImageURL:   domain.DefaultCoverImageURL,
		IsForTrade:      forTrade,
		IsForSale:       true,
		Price:           decimal.NewNullDecimal(decimal.RequireFromString("15.00")),
		PublicationYear: 2001,
		Genre:           domain.DefaultGenre,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := db.ExecContext(context.Background(), `
		INSERT INTO books (id, owner_id, title, author, description, cover_image_url,
			is_for_sale, is_for_trade, price, publication_year, genre, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		book.ID, book.OwnerID, book.Title, book.Author, book.Description, book.CoverImageURL,
		book.IsForSale, book.IsForTrade, book.Price, book.PublicationYear, book.Genre,
		book.CreatedAt, book.UpdatedAt,
	)
	require.NoError(t, err, "Failed to insert test book")
	return book
}
