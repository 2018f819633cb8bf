package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/api"
	"github.com/phrazzld/bookswap-api/internal/config"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/events"
	"github.com/phrazzld/bookswap-api/internal/mocks"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/phrazzld/bookswap-api/internal/service/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	handler http.Handler
	dbMock  sqlmock.Sqlmock
	alice   *domain.User
	bob     *domain.User
	books   []*domain.Book
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	alice := &domain.User{
		ID:             uuid.New(),
		Name:           "alice",
		HashedPassword: "hashed:secret1",
		Balance:        domain.DefaultStartingBalance,
		Role:           domain.RoleUser,
	}
	bob := &domain.User{
		ID:             uuid.New(),
		Name:           "bob",
		HashedPassword: "hashed:secret2",
		Balance:        domain.DefaultStartingBalance,
		Role:           domain.RoleUser,
	}

	aliceBook, err := domain.NewBook(alice.ID, "Dune", "Frank Herbert", "Desert planet", 1965)
	require.NoError(t, err)
	bobBook, err := domain.NewBook(bob.ID, "Emma", "Jane Austen", "Matchmaking", 1815)
	require.NoError(t, err)

	l, _ := logger.NewTestLogger()
	users := mocks.NewMockUserStore(alice, bob)
	books := mocks.NewMockBookStore(aliceBook, bobBook)
	trades := mocks.NewMockTradeStore()
	hasher := &mocks.MockPasswordHasher{}
	jwt := &mocks.MockJWTService{}

	app := &application{
		config:       &config.Config{},
		logger:       l,
		db:           db,
		userStore:    users,
		bookStore:    books,
		tradeStore:   trades,
		jwtService:   jwt,
		eventEmitter: events.NewInMemoryEventEmitter(l),
	}
	app.authService = service.NewAuthService(db, users, hasher, hasher, jwt, l)
	app.userService = service.NewUserService(users, hasher, db, l)
	app.bookService = service.NewBookService(books, users, db, l)
	app.tradeService = trade.NewService(db, trades, books, app.eventEmitter, l)

	return &routerFixture{
		handler: app.setupRouter(),
		dbMock:  dbMock,
		alice:   alice,
		bob:     bob,
		books:   []*domain.Book{aliceBook, bobBook},
	}
}

func (f *routerFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		f := newRouterFixture(t)
		f.dbMock.ExpectPing()

		rec := f.do(t, http.MethodGet, "/api/health", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp api.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "connected", resp.Database)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("database unreachable", func(t *testing.T) {
		f := newRouterFixture(t)
		f.dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := f.do(t, http.MethodGet, "/api/health", "", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)
	someID := uuid.New().String()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPut, "/api/users/profile"},
		{http.MethodPost, "/api/users/balance/top-up"},
		{http.MethodGet, "/api/users/" + someID},
		{http.MethodDelete, "/api/users/" + someID},
		{http.MethodPost, "/api/books"},
		{http.MethodPut, "/api/books/" + someID},
		{http.MethodDelete, "/api/books/" + someID},
		{http.MethodGet, "/api/books/user/my-books"},
		{http.MethodGet, "/api/trades/my-trades"},
		{http.MethodGet, "/api/trades/incoming"},
		{http.MethodGet, "/api/trades/outgoing"},
		{http.MethodGet, "/api/trades/" + someID},
		{http.MethodPost, "/api/trades/propose"},
		{http.MethodPut, "/api/trades/" + someID + "/respond"},
		{http.MethodDelete, "/api/trades/" + someID + "/cancel"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := f.do(t, rt.method, rt.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_PublicBookReads(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []api.BookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = f.do(t, http.MethodGet, "/api/books/"+f.books[0].ID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var book api.BookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, f.books[0].ID, book.ID)

	// An invalid token on an optional-auth route is ignored
	rec = f.do(t, http.MethodGet, "/api/books", "garbage", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MyBooksIsNotABookID(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/books/user/my-books", mocks.TokenFor(f.bob.ID), "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list []api.BookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, f.bob.ID, list[0].CurrentOwnerID)
}

func TestRouter_LoginAndProfile(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var auth api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	assert.Equal(t, f.alice.ID, auth.User.ID)
	require.NotEmpty(t, auth.Token)

	rec = f.do(t, http.MethodGet, "/api/users/profile", auth.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profile api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.Name)
	assert.NotContains(t, rec.Body.String(), "hashed:")

	rec = f.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_TradeLists(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/api/trades/my-trades", "/api/trades/incoming", "/api/trades/outgoing"} {
		t.Run(path, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, path, mocks.TokenFor(f.alice.ID), "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestRouter_TraceIDHeaderAndUnknownRoute(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/does-not-exist", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}
