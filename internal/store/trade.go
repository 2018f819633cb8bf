package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
)

// TradeStore defines the interface for the trade ledger.
// All list methods return trades ordered by creation time, newest first.
type TradeStore interface {
	// Create saves a new trade.
	// Returns ErrPendingTradeExists if a pending trade already covers the
	// same unordered pair of books.
	Create(ctx context.Context, trade *domain.Trade) error

	// GetByID retrieves a trade by its unique ID.
	// Returns ErrTradeNotFound if the trade does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error)

	// ListByUser returns every trade where userID is initiator or recipient,
	// in any status.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)

	// ListPendingByRecipient returns pending trades addressed to userID.
	ListPendingByRecipient(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)

	// ListPendingByInitiator returns pending trades proposed by userID.
	ListPendingByInitiator(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)

	// ExistsPendingForPair reports whether a pending trade covers the pair,
	// in either direction.
	ExistsPendingForPair(ctx context.Context, pair domain.BookPair) (bool, error)

	// UpdateStatusIfPending moves a pending trade to status and returns the
	// updated trade. Returns ErrTradeNotFound if the trade does not exist and
	// ErrTradeNotPending if it is no longer pending.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status domain.TradeStatus) (*domain.Trade, error)

	// DeletePending removes a pending trade. Returns ErrTradeNotFound if the
	// trade does not exist and ErrTradeNotPending if it is no longer pending.
	DeletePending(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TradeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TradeStore
}
