package service_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func testUser(name string, role domain.Role) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:             uuid.New(),
		Name:           name,
		HashedPassword: "hashed:password1",
		Balance:        decimal.NewFromInt(500),
		Role:           role,
		AvatarURL:      domain.DefaultAvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func testBook(owner uuid.UUID, title string, created time.Time) *domain.Book {
	return &domain.Book{
		ID:              uuid.New(),
		OwnerID:         owner,
		Title:           title,
		Author:          "Author",
		Description:     "Description",
		CoverImageURL:   domain.DefaultCoverImageURL,
		IsForTrade:      true,
		PublicationYear: 2001,
		Genre:           domain.DefaultGenre,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func ptr[T any](v T) *T {
	return &v
}

type mocksSQL struct {
	sqlmock.Sqlmock
}

func (m *mocksSQL) expectCommit() {
	m.ExpectBegin()
	m.ExpectCommit()
}

func (m *mocksSQL) expectRollback() {
	m.ExpectBegin()
	m.ExpectRollback()
}
