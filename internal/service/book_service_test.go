package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/mocks"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/phrazzld/bookswap-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookFixture struct {
	owner, admin, other *domain.User
	book                *domain.Book
	books               *mocks.MockBookStore
	svc                 service.BookService
	tx                  *mocksSQL
}

func newBookFixture(t *testing.T) *bookFixture {
	t.Helper()
	f := &bookFixture{
		owner: testUser("owner1", domain.RoleUser),
		admin: testUser("admin1", domain.RoleAdmin),
		other: testUser("other1", domain.RoleUser),
	}
	f.book = testBook(f.owner.ID, "Dune", time.Now().UTC())
	f.books = mocks.NewMockBookStore(f.book)
	users := mocks.NewMockUserStore(f.owner, f.admin, f.other)

	db, sqlMock := newSQLMock(t)
	f.tx = &mocksSQL{sqlMock}
	f.svc = service.NewBookService(f.books, users, db, nil)
	return f
}

func TestBookService_CreateBook(t *testing.T) {
	f := newBookFixture(t)

	book, err := f.svc.CreateBook(context.Background(), f.owner.ID, service.BookInput{
		Title:           "  The Hobbit ",
		Author:          "Tolkien",
		Description:     "There and back again",
		IsForSale:       true,
		Price:           decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		PublicationYear: 1937,
	})

	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, book.OwnerID)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, domain.DefaultCoverImageURL, book.CoverImageURL)
	assert.Equal(t, domain.DefaultGenre, book.Genre)

	stored, err := f.books.GetByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, stored.Title)

	t.Run("price required when for sale", func(t *testing.T) {
		_, err := f.svc.CreateBook(context.Background(), f.owner.ID, service.BookInput{
			Title:           "Emma",
			Author:          "Austen",
			Description:     "Matchmaking",
			IsForSale:       true,
			PublicationYear: 1815,
		})
		assert.ErrorIs(t, err, domain.ErrPriceRequired)
	})
}

func TestBookService_UpdateBook(t *testing.T) {
	t.Run("owner updates", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectCommit()

		updated, err := f.svc.UpdateBook(context.Background(), f.owner.ID, f.book.ID, service.BookUpdate{
			IsForTrade: ptr(false),
			Genre:      ptr("Sci-Fi"),
		})

		require.NoError(t, err)
		assert.False(t, updated.IsForTrade)
		assert.Equal(t, "Sci-Fi", updated.Genre)
		assert.Equal(t, "Dune", updated.Title)
	})

	t.Run("admin updates someone else's book", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectCommit()

		updated, err := f.svc.UpdateBook(context.Background(), f.admin.ID, f.book.ID, service.BookUpdate{
			Title: ptr("Dune Messiah"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", updated.Title)
		assert.Equal(t, f.owner.ID, updated.OwnerID)
	})

	t.Run("other user is refused", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectRollback()

		_, err := f.svc.UpdateBook(context.Background(), f.other.ID, f.book.ID, service.BookUpdate{
			Title: ptr("Mine now"),
		})

		assert.ErrorIs(t, err, service.ErrNotOwned)
		stored, _ := f.books.GetByID(context.Background(), f.book.ID)
		assert.Equal(t, "Dune", stored.Title)
	})

	t.Run("putting a book on sale without a price", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectRollback()

		_, err := f.svc.UpdateBook(context.Background(), f.owner.ID, f.book.ID, service.BookUpdate{
			IsForSale: ptr(true),
		})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing book", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectRollback()

		_, err := f.svc.UpdateBook(context.Background(), f.owner.ID, uuid.New(), service.BookUpdate{})

		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})
}

func TestBookService_DeleteBook(t *testing.T) {
	t.Run("other user is refused", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectRollback()

		err := f.svc.DeleteBook(context.Background(), f.other.ID, f.book.ID)

		assert.ErrorIs(t, err, service.ErrNotOwned)
	})

	t.Run("admin deletes", func(t *testing.T) {
		f := newBookFixture(t)
		f.tx.expectCommit()

		require.NoError(t, f.svc.DeleteBook(context.Background(), f.admin.ID, f.book.ID))

		_, err := f.svc.GetBook(context.Background(), f.book.ID)
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})
}

func TestBookService_ListBooks(t *testing.T) {
	f := newBookFixture(t)
	older := testBook(f.other.ID, "Neuromancer", time.Now().UTC().Add(-time.Hour))
	older.IsForTrade = false
	require.NoError(t, f.books.Create(context.Background(), older))

	all, err := f.svc.ListBooks(context.Background(), domain.BookFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, f.book.ID, all[0].ID)

	tradable, err := f.svc.ListBooks(context.Background(), domain.BookFilter{ForTrade: ptr(true)})
	require.NoError(t, err)
	require.Len(t, tradable, 1)
	assert.Equal(t, f.book.ID, tradable[0].ID)

	search, err := f.svc.ListBooks(context.Background(), domain.BookFilter{Search: "neuro"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, older.ID, search[0].ID)

	mine, err := f.svc.ListUserBooks(context.Background(), f.other.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, older.ID, mine[0].ID)
}
