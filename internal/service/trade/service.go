package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
)

// Service runs the trade proposal state machine.
//
// A trade starts pending. Only its recipient may accept or reject it and only
// its initiator may cancel it, and only while it is still pending. Cancelling
// removes the trade; accepted and rejected trades are kept. Accepting a trade
// does not move book ownership.
type Service interface {
	// ProposeTrade offers initiatorBookID in exchange for recipientBookID.
	// The recipient is always the current owner of recipientBookID.
	//
	// Fails with ErrNotFound if either book is missing, ErrForbidden if the
	// initiator does not own initiatorBookID, ErrInvalidOperation if both
	// books have the same owner or either is not offered for trade, and
	// ErrConflict if a pending trade exists for the pair in either order.
	ProposeTrade(ctx context.Context, initiatorID, initiatorBookID, recipientBookID uuid.UUID) (*domain.Trade, error)

	// RespondToTrade sets a pending trade to accepted or rejected.
	//
	// Fails with ErrInvalidOperation for any other response or a trade that
	// is no longer pending, ErrNotFound if the trade is missing and
	// ErrForbidden if userID is not the recipient.
	RespondToTrade(
		ctx context.Context,
		tradeID uuid.UUID,
		response domain.TradeStatus,
		userID uuid.UUID,
	) (*domain.Trade, error)

	// CancelTrade deletes a pending trade on behalf of its initiator.
	// It returns false together with ErrNotFound if the trade is missing.
	//
	// Fails with ErrForbidden if userID is not the initiator and
	// ErrInvalidOperation if the trade is no longer pending.
	CancelTrade(ctx context.Context, tradeID, userID uuid.UUID) (bool, error)

	// GetTrade returns a trade to one of its two participants.
	GetTrade(ctx context.Context, tradeID, userID uuid.UUID) (*domain.Trade, error)

	// GetUserTrades lists every trade the user takes part in, newest first.
	GetUserTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)

	// GetIncomingTrades lists pending trades awaiting the user's response.
	GetIncomingTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)

	// GetOutgoingTrades lists pending trades the user has proposed.
	GetOutgoingTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)
}
