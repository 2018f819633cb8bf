package trade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/events"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/store"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	db      *sql.DB
	trades  store.TradeStore
	books   store.BookStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewService creates the trade service. A nil emitter discards events.
func NewService(
	db *sql.DB,
	trades store.TradeStore,
	books store.BookStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if trades == nil {
		panic("trades cannot be nil")
	}
	if books == nil {
		panic("books cannot be nil")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		db:      db,
		trades:  trades,
		books:   books,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "trade_service")),
	}
}

// ProposeTrade implements Service.ProposeTrade.
// The checks and the insert share one transaction; the pending pair index
// turns a concurrent duplicate insert into ErrConflict.
func (s *serviceImpl) ProposeTrade(
	ctx context.Context,
	initiatorID, initiatorBookID, recipientBookID uuid.UUID,
) (*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("initiator_id", initiatorID.String()),
		slog.String("initiator_book_id", initiatorBookID.String()),
		slog.String("recipient_book_id", recipientBookID.String()))

	var created *domain.Trade
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		books := s.books.WithTx(tx)
		trades := s.trades.WithTx(tx)

		initiatorBook, err := s.getBook(ctx, books, initiatorBookID)
		if err != nil {
			return err
		}
		recipientBook, err := s.getBook(ctx, books, recipientBookID)
		if err != nil {
			return err
		}

		if !initiatorBook.IsOwnedBy(initiatorID) {
			return newError(ErrForbidden, OpPropose, msgNotBookOwner, nil)
		}

		recipientID := recipientBook.OwnerID
		if recipientID == initiatorID {
			return newError(ErrInvalidOperation, OpPropose, msgSelfTrade, nil)
		}

		if !initiatorBook.IsForTrade || !recipientBook.IsForTrade {
			return newError(ErrInvalidOperation, OpPropose, msgBookNotForTrade, nil)
		}

		pair := domain.NewBookPair(initiatorBookID, recipientBookID)
		exists, err := trades.ExistsPendingForPair(ctx, pair)
		if err != nil {
			return fmt.Errorf("failed to check pending trades: %w", err)
		}
		if exists {
			return newError(ErrConflict, OpPropose, msgPendingTradeExists, nil)
		}

		trade, err := domain.NewTrade(initiatorID, initiatorBookID, recipientID, recipientBookID)
		if err != nil {
			return fmt.Errorf("failed to build trade: %w", err)
		}

		if err := trades.Create(ctx, trade); err != nil {
			if errors.Is(err, store.ErrPendingTradeExists) {
				return newError(ErrConflict, OpPropose, msgPendingTradeExists, err)
			}
			return fmt.Errorf("failed to create trade: %w", err)
		}

		trade.AttachBooks(initiatorBook, recipientBook)
		created = trade
		return nil
	})
	if err != nil {
		s.logFailure(log, OpPropose, err)
		return nil, err
	}

	log.Info("trade proposed",
		slog.String("trade_id", created.ID.String()),
		slog.String("recipient_id", created.RecipientID.String()))
	s.emit(ctx, events.TradeProposed, created, initiatorID)
	return created, nil
}

func (s *serviceImpl) getBook(ctx context.Context, books store.BookStore, id uuid.UUID) (*domain.Book, error) {
	book, err := books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, newError(ErrNotFound, OpPropose, msgBookNotFound, err)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// loadTrade fetches a trade, translating a missing row into ErrNotFound for op.
func (s *serviceImpl) loadTrade(ctx context.Context, op string, id uuid.UUID) (*domain.Trade, error) {
	trade, err := s.trades.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTradeNotFound) {
			return nil, newError(ErrNotFound, op, msgTradeNotFound, err)
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// conditionalWriteError maps a failed conditional write. A trade that
// disappeared or left pending between the read and the write is reported the
// same way as if the read had seen it.
func conditionalWriteError(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrTradeNotFound):
		return newError(ErrNotFound, op, msgTradeNotFound, err)
	case errors.Is(err, store.ErrTradeNotPending):
		return newError(ErrInvalidOperation, op, msgNotPending, err)
	default:
		return fmt.Errorf("failed to write trade: %w", err)
	}
}

// RespondToTrade implements Service.RespondToTrade.
func (s *serviceImpl) RespondToTrade(
	ctx context.Context,
	tradeID uuid.UUID,
	response domain.TradeStatus,
	userID uuid.UUID,
) (*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("trade_id", tradeID.String()),
		slog.String("user_id", userID.String()),
		slog.String("response", string(response)))

	updated, err := s.respond(ctx, tradeID, response, userID)
	if err != nil {
		s.logFailure(log, OpRespond, err)
		return nil, err
	}

	log.Info("trade response recorded")
	eventType := events.TradeRejected
	if updated.Status == domain.TradeStatusAccepted {
		eventType = events.TradeAccepted
	}
	s.emit(ctx, eventType, updated, userID)
	return updated, nil
}

func (s *serviceImpl) respond(
	ctx context.Context,
	tradeID uuid.UUID,
	response domain.TradeStatus,
	userID uuid.UUID,
) (*domain.Trade, error) {
	trade, err := s.loadTrade(ctx, OpRespond, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.RecipientID != userID {
		return nil, newError(ErrForbidden, OpRespond, msgNotRecipient, nil)
	}
	if trade.Status != domain.TradeStatusPending {
		return nil, newError(ErrInvalidOperation, OpRespond, msgNotPending, nil)
	}
	if !response.IsValidResponse() {
		return nil, newError(ErrInvalidOperation, OpRespond, msgInvalidResponse, domain.ErrInvalidTradeResponse)
	}

	updated, err := s.trades.UpdateStatusIfPending(ctx, tradeID, response)
	if err != nil {
		return nil, conditionalWriteError(OpRespond, err)
	}
	updated.CopyRelations(trade)
	return updated, nil
}

// CancelTrade implements Service.CancelTrade.
func (s *serviceImpl) CancelTrade(ctx context.Context, tradeID, userID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("trade_id", tradeID.String()),
		slog.String("user_id", userID.String()))

	trade, err := s.cancel(ctx, tradeID, userID)
	if err != nil {
		s.logFailure(log, OpCancel, err)
		return false, err
	}

	log.Info("trade cancelled")
	trade.Status = domain.TradeStatusCancelled
	s.emit(ctx, events.TradeCancelled, trade, userID)
	return true, nil
}

func (s *serviceImpl) cancel(ctx context.Context, tradeID, userID uuid.UUID) (*domain.Trade, error) {
	trade, err := s.loadTrade(ctx, OpCancel, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.InitiatorID != userID {
		return nil, newError(ErrForbidden, OpCancel, msgNotInitiator, nil)
	}
	if trade.Status != domain.TradeStatusPending {
		return nil, newError(ErrInvalidOperation, OpCancel, msgNotPending, nil)
	}

	if err := s.trades.DeletePending(ctx, tradeID); err != nil {
		return nil, conditionalWriteError(OpCancel, err)
	}
	return trade, nil
}

// GetTrade implements Service.GetTrade.
func (s *serviceImpl) GetTrade(ctx context.Context, tradeID, userID uuid.UUID) (*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	trade, err := s.loadTrade(ctx, OpGetTrade, tradeID)
	if err != nil {
		s.logFailure(log, OpGetTrade, err)
		return nil, err
	}
	if !trade.IsParticipant(userID) {
		log.Warn("non-participant requested trade",
			slog.String("trade_id", tradeID.String()),
			slog.String("user_id", userID.String()))
		return nil, newError(ErrForbidden, OpGetTrade, msgNotParticipant, nil)
	}
	return trade, nil
}

// GetUserTrades implements Service.GetUserTrades.
func (s *serviceImpl) GetUserTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return s.listTrades(ctx, "user", userID, s.trades.ListByUser)
}

// GetIncomingTrades implements Service.GetIncomingTrades.
func (s *serviceImpl) GetIncomingTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return s.listTrades(ctx, "incoming", userID, s.trades.ListPendingByRecipient)
}

// GetOutgoingTrades implements Service.GetOutgoingTrades.
func (s *serviceImpl) GetOutgoingTrades(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	return s.listTrades(ctx, "outgoing", userID, s.trades.ListPendingByInitiator)
}

func (s *serviceImpl) listTrades(
	ctx context.Context,
	scope string,
	userID uuid.UUID,
	list func(context.Context, uuid.UUID) ([]*domain.Trade, error),
) ([]*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	trades, err := list(ctx, userID)
	if err != nil {
		log.Error("failed to list trades",
			slog.String("error", err.Error()),
			slog.String("scope", scope),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list %s trades: %w", scope, err)
	}

	log.Debug("listed trades",
		slog.String("scope", scope),
		slog.String("user_id", userID.String()),
		slog.Int("count", len(trades)))
	return trades, nil
}

// logFailure logs rejected requests at warn and unexpected failures at error.
func (s *serviceImpl) logFailure(log *slog.Logger, op string, err error) {
	var tradeErr *Error
	if errors.As(err, &tradeErr) {
		log.Warn("trade request rejected",
			slog.String("op", op),
			slog.String("reason", tradeErr.Message))
		return
	}
	log.Error("trade operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()))
}

// emit publishes a lifecycle event. The state change is already committed,
// so a handler failure is logged and not returned.
func (s *serviceImpl) emit(ctx context.Context, eventType string, trade *domain.Trade, actorID uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTradeEvent(eventType, trade.ID, actorID, trade)
	if err != nil {
		log.Error("failed to build trade event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("trade_id", trade.ID.String()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit trade event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("trade_id", trade.ID.String()))
	}
}
