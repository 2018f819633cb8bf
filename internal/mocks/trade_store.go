package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/store"
)

// MockTradeStore implements store.TradeStore for testing.
// Like the pending pair index, Create rejects a second pending trade for the
// same unordered pair of books.
type MockTradeStore struct {
	CreateFn                 func(ctx context.Context, trade *domain.Trade) error
	GetByIDFn                func(ctx context.Context, id uuid.UUID) (*domain.Trade, error)
	ListByUserFn             func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
	ListPendingByRecipientFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
	ListPendingByInitiatorFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
	ExistsPendingForPairFn   func(ctx context.Context, pair domain.BookPair) (bool, error)
	UpdateStatusIfPendingFn  func(ctx context.Context, id uuid.UUID, status domain.TradeStatus) (*domain.Trade, error)
	DeletePendingFn          func(ctx context.Context, id uuid.UUID) error

	mu     sync.Mutex
	trades map[uuid.UUID]*domain.Trade
}

// NewMockTradeStore creates a new mock store seeded with trades.
func NewMockTradeStore(trades ...*domain.Trade) *MockTradeStore {
	m := &MockTradeStore{trades: make(map[uuid.UUID]*domain.Trade)}
	for _, t := range trades {
		m.trades[t.ID] = copyTrade(t)
	}
	return m
}

var _ store.TradeStore = (*MockTradeStore)(nil)

func copyTrade(t *domain.Trade) *domain.Trade {
	c := *t
	return &c
}

// Len returns the number of stored trades.
func (m *MockTradeStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trades)
}

// Create implements store.TradeStore
func (m *MockTradeStore) Create(ctx context.Context, trade *domain.Trade) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, trade)
	}
	if err := trade.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if trade.Status == domain.TradeStatusPending && m.pendingForPair(trade.Pair()) {
		return store.ErrPendingTradeExists
	}
	m.trades[trade.ID] = copyTrade(trade)
	return nil
}

// GetByID implements store.TradeStore
func (m *MockTradeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trades[id]
	if !ok {
		return nil, store.ErrTradeNotFound
	}
	return copyTrade(t), nil
}

func (m *MockTradeStore) filter(keep func(*domain.Trade) bool) []*domain.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()

	trades := []*domain.Trade{}
	for _, t := range m.trades {
		if keep(t) {
			trades = append(trades, copyTrade(t))
		}
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})
	return trades
}

// ListByUser implements store.TradeStore
func (m *MockTradeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	return m.filter(func(t *domain.Trade) bool { return t.IsParticipant(userID) }), nil
}

// ListPendingByRecipient implements store.TradeStore
func (m *MockTradeStore) ListPendingByRecipient(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	if m.ListPendingByRecipientFn != nil {
		return m.ListPendingByRecipientFn(ctx, userID)
	}
	return m.filter(func(t *domain.Trade) bool {
		return t.RecipientID == userID && t.Status == domain.TradeStatusPending
	}), nil
}

// ListPendingByInitiator implements store.TradeStore
func (m *MockTradeStore) ListPendingByInitiator(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	if m.ListPendingByInitiatorFn != nil {
		return m.ListPendingByInitiatorFn(ctx, userID)
	}
	return m.filter(func(t *domain.Trade) bool {
		return t.InitiatorID == userID && t.Status == domain.TradeStatusPending
	}), nil
}

func (m *MockTradeStore) pendingForPair(pair domain.BookPair) bool {
	for _, t := range m.trades {
		if t.Status == domain.TradeStatusPending && t.Pair() == pair {
			return true
		}
	}
	return false
}

// ExistsPendingForPair implements store.TradeStore
func (m *MockTradeStore) ExistsPendingForPair(ctx context.Context, pair domain.BookPair) (bool, error) {
	if m.ExistsPendingForPairFn != nil {
		return m.ExistsPendingForPairFn(ctx, pair)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingForPair(pair), nil
}

// UpdateStatusIfPending implements store.TradeStore
func (m *MockTradeStore) UpdateStatusIfPending(
	ctx context.Context,
	id uuid.UUID,
	status domain.TradeStatus,
) (*domain.Trade, error) {
	if m.UpdateStatusIfPendingFn != nil {
		return m.UpdateStatusIfPendingFn(ctx, id, status)
	}
	if !domain.TradeStatusPending.CanTransitionTo(status) {
		return nil, domain.ErrTradeStatusTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trades[id]
	if !ok {
		return nil, store.ErrTradeNotFound
	}
	if t.Status != domain.TradeStatusPending {
		return nil, store.ErrTradeNotPending
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return copyTrade(t), nil
}

// DeletePending implements store.TradeStore
func (m *MockTradeStore) DeletePending(ctx context.Context, id uuid.UUID) error {
	if m.DeletePendingFn != nil {
		return m.DeletePendingFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trades[id]
	if !ok {
		return store.ErrTradeNotFound
	}
	if t.Status != domain.TradeStatusPending {
		return store.ErrTradeNotPending
	}
	delete(m.trades, id)
	return nil
}

// WithTx implements store.TradeStore
func (m *MockTradeStore) WithTx(tx *sql.Tx) store.TradeStore {
	return m
}
