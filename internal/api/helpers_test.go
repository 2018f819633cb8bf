package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/api/shared"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/phrazzld/bookswap-api/internal/service/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newRequest builds a request with an optional JSON body, chi URL params and
// an authenticated user.
func newRequest(
	t *testing.T,
	method, target string,
	body interface{},
	userID uuid.UUID,
	params map[string]string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = shared.WithUserID(ctx, userID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec).Error
}

func testUser(name string) *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Name:           name,
		HashedPassword: "hashed",
		Balance:        decimal.NewFromInt(500),
		Role:           domain.RoleUser,
	}
}

func testTrade(initiator, recipient uuid.UUID) *domain.Trade {
	t, err := domain.NewTrade(initiator, uuid.New(), recipient, uuid.New())
	if err != nil {
		panic(err)
	}
	return t
}

type fakeAuthService struct {
	RegisterFn func(ctx context.Context, name, password string) (*service.AuthResult, error)
	LoginFn    func(ctx context.Context, name, password string) (*service.AuthResult, error)
}

func (f *fakeAuthService) Register(ctx context.Context, name, password string) (*service.AuthResult, error) {
	return f.RegisterFn(ctx, name, password)
}

func (f *fakeAuthService) Login(ctx context.Context, name, password string) (*service.AuthResult, error) {
	return f.LoginFn(ctx, name, password)
}

type fakeUserService struct {
	GetUserFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsersFn     func(ctx context.Context) ([]*domain.User, error)
	UpdateProfileFn func(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*domain.User, error)
	TopUpBalanceFn  func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.User, error)
	DeleteUserFn    func(ctx context.Context, actorID, targetID uuid.UUID) error
}

func (f *fakeUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return f.GetUserFn(ctx, userID)
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return f.ListUsersFn(ctx)
}

func (f *fakeUserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update service.ProfileUpdate,
) (*domain.User, error) {
	return f.UpdateProfileFn(ctx, userID, update)
}

func (f *fakeUserService) TopUpBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.User, error) {
	return f.TopUpBalanceFn(ctx, userID, amount)
}

func (f *fakeUserService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	return f.DeleteUserFn(ctx, actorID, targetID)
}

type fakeBookService struct {
	ListBooksFn     func(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	GetBookFn       func(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)
	CreateBookFn    func(ctx context.Context, ownerID uuid.UUID, input service.BookInput) (*domain.Book, error)
	UpdateBookFn    func(ctx context.Context, actorID, bookID uuid.UUID, update service.BookUpdate) (*domain.Book, error)
	DeleteBookFn    func(ctx context.Context, actorID, bookID uuid.UUID) error
	ListUserBooksFn func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)
}

func (f *fakeBookService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	return f.ListBooksFn(ctx, filter)
}

func (f *fakeBookService) GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	return f.GetBookFn(ctx, bookID)
}

func (f *fakeBookService) CreateBook(
	ctx context.Context,
	ownerID uuid.UUID,
	input service.BookInput,
) (*domain.Book, error) {
	return f.CreateBookFn(ctx, ownerID, input)
}

func (f *fakeBookService) UpdateBook(
	ctx context.Context,
	actorID, bookID uuid.UUID,
	update service.BookUpdate,
) (*domain.Book, error) {
	return f.UpdateBookFn(ctx, actorID, bookID, update)
}

func (f *fakeBookService) DeleteBook(ctx context.Context, actorID, bookID uuid.UUID) error {
	return f.DeleteBookFn(ctx, actorID, bookID)
}

func (f *fakeBookService) ListUserBooks(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error) {
	return f.ListUserBooksFn(ctx, ownerID)
}

type fakeTradeService struct {
	ProposeTradeFn      func(ctx context.Context, initiatorID, initiatorBookID, recipientBookID uuid.UUID) (*domain.Trade, error)
	RespondToTradeFn    func(ctx context.Context, tradeID uuid.UUID, response domain.TradeStatus, userID uuid.UUID) (*domain.Trade, error)
	CancelTradeFn       func(ctx context.Context, tradeID, userID uuid.UUID) (bool, error)
	GetTradeFn          func(ctx context.Context, tradeID, userID uuid.UUID) (*domain.Trade, error)
	GetUserTradesFn     func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
	GetIncomingTradesFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
	GetOutgoingTradesFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
}

var _ trade.Service = (*fakeTradeService)(nil)

func (f *fakeTradeService) ProposeTrade(
	ctx context.Context,
	initiatorID, initiatorBookID, recipientBookID uuid.UUID,
) (*domain.Trade, error) {
	return f.ProposeTradeFn(ctx, initiatorID, initiatorBookID, recipientBookID)
}

func (f *fakeTradeService) RespondToTrade(
	ctx context.Context,
	tradeID uuid.UUID,
	response domain.TradeStatus,
	userID uuid.UUID,
) (*domain.Trade, error) {
	return f.RespondToTradeFn(ctx, tradeID, response, userID)
}

func (f *fakeTradeService) CancelTrade(ctx context.Context, tradeID, userID uuid.UUID) (bool, error) {
	return f.CancelTradeFn(ctx, tradeID, userID)
}

func (f *fakeTradeService) GetTrade(ctx context.Context, tradeID, userID uuid.UUID) (*domain.Trade, error) {
	return f.GetTradeFn(ctx, tradeID, userID)
}

func (f *fakeTradeService) GetUserTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return f.GetUserTradesFn(ctx, userID)
}

func (f *fakeTradeService) GetIncomingTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return f.GetIncomingTradesFn(ctx, userID)
}

func (f *fakeTradeService) GetOutgoingTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return f.GetOutgoingTradesFn(ctx, userID)
}
