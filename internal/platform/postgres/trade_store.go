package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/store"
)

var tradeColumnList = []string{
	"id", "initiator_id", "initiator_book_id", "recipient_id", "recipient_book_id",
	"status", "created_at", "updated_at",
}

var tradeColumns = strings.Join(tradeColumnList, ", ")

// tradeReadQuery selects trades aliased t with both participants and both
// books, each book carrying its current owner.
var tradeReadQuery = `SELECT ` + strings.Join([]string{
	qualifiedColumns("t", tradeColumnList),
	qualifiedColumns("iu", userSummaryColumns),
	qualifiedColumns("ru", userSummaryColumns),
	qualifiedColumns("ib", bookColumnList),
	qualifiedColumns("ibo", userSummaryColumns),
	qualifiedColumns("rb", bookColumnList),
	qualifiedColumns("rbo", userSummaryColumns),
}, ", ") + `
	FROM book_trades t
	JOIN users iu ON iu.id = t.initiator_id
	JOIN users ru ON ru.id = t.recipient_id
	JOIN books ib ON ib.id = t.initiator_book_id
	JOIN users ibo ON ibo.id = ib.owner_id
	JOIN books rb ON rb.id = t.recipient_book_id
	JOIN users rbo ON rbo.id = rb.owner_id`

// PostgresTradeStore implements the store.TradeStore interface
// using a PostgreSQL database as the storage backend.
//
// The book_trades_pending_pair_key partial unique index guarantees at most
// one pending trade per unordered book pair, even under concurrent inserts.
type PostgresTradeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTradeStore creates a new PostgreSQL implementation of the TradeStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTradeStore(db store.DBTX, logger *slog.Logger) *PostgresTradeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTradeStore{
		db:     db,
		logger: logger.With(slog.String("component", "trade_store")),
	}
}

// Ensure PostgresTradeStore implements store.TradeStore interface
var _ store.TradeStore = (*PostgresTradeStore)(nil)

// WithTx implements store.TradeStore.WithTx
func (s *PostgresTradeStore) WithTx(tx *sql.Tx) store.TradeStore {
	return &PostgresTradeStore{
		db:     tx,
		logger: s.logger,
	}
}

func tradeDest(trade *domain.Trade, status *string) []any {
	return []any{
		&trade.ID,
		&trade.InitiatorID,
		&trade.InitiatorBookID,
		&trade.RecipientID,
		&trade.RecipientBookID,
		status,
		&trade.CreatedAt,
		&trade.UpdatedAt,
	}
}

// scanTrade reads the bare book_trades columns.
func scanTrade(row rowScanner) (*domain.Trade, error) {
	var trade domain.Trade
	var status string
	if err := row.Scan(tradeDest(&trade, &status)...); err != nil {
		return nil, err
	}
	trade.Status = domain.TradeStatus(status)
	return &trade, nil
}

// scanTradeDetail reads a row produced by tradeReadQuery.
func scanTradeDetail(row rowScanner) (*domain.Trade, error) {
	var (
		trade                        domain.Trade
		status                       string
		initiator, recipient         domain.UserSummary
		initiatorBookOwner           domain.UserSummary
		recipientBookOwner           domain.UserSummary
		initiatorBook, recipientBook domain.Book
	)

	dest := tradeDest(&trade, &status)
	dest = append(dest, userSummaryDest(&initiator)...)
	dest = append(dest, userSummaryDest(&recipient)...)
	dest = append(dest, bookDest(&initiatorBook)...)
	dest = append(dest, userSummaryDest(&initiatorBookOwner)...)
	dest = append(dest, bookDest(&recipientBook)...)
	dest = append(dest, userSummaryDest(&recipientBookOwner)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	trade.Status = domain.TradeStatus(status)
	trade.Initiator = &initiator
	trade.Recipient = &recipient
	initiatorBook.Owner = &initiatorBookOwner
	recipientBook.Owner = &recipientBookOwner
	trade.InitiatorBook = &initiatorBook
	trade.RecipientBook = &recipientBook
	return &trade, nil
}

// Create implements store.TradeStore.Create
// Returns store.ErrPendingTradeExists when the pending pair index rejects the row.
func (s *PostgresTradeStore) Create(ctx context.Context, trade *domain.Trade) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := trade.Validate(); err != nil {
		log.Warn("trade validation failed during create",
			slog.String("error", err.Error()),
			slog.String("trade_id", trade.ID.String()))
		return err
	}

	query := `
		INSERT INTO book_trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		trade.ID,
		trade.InitiatorID,
		trade.InitiatorBookID,
		trade.RecipientID,
		trade.RecipientBookID,
		string(trade.Status),
		trade.CreatedAt,
		trade.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrPendingTradeExists) {
			log.Debug("pending trade already exists for book pair",
				slog.String("initiator_book_id", trade.InitiatorBookID.String()),
				slog.String("recipient_book_id", trade.RecipientBookID.String()))
			return store.ErrPendingTradeExists
		}
		log.Error("failed to create trade",
			slog.String("error", err.Error()),
			slog.String("trade_id", trade.ID.String()))
		return mapped
	}

	log.Info("trade created successfully",
		slog.String("trade_id", trade.ID.String()),
		slog.String("initiator_id", trade.InitiatorID.String()),
		slog.String("recipient_id", trade.RecipientID.String()))
	return nil
}

// GetByID implements store.TradeStore.GetByID
// Returns store.ErrTradeNotFound if the trade does not exist.
func (s *PostgresTradeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := tradeReadQuery + ` WHERE t.id = $1`
	trade, err := scanTradeDetail(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("trade not found", slog.String("trade_id", id.String()))
			return nil, store.ErrTradeNotFound
		}
		log.Error("failed to get trade by ID",
			slog.String("error", err.Error()),
			slog.String("trade_id", id.String()))
		return nil, err
	}

	return trade, nil
}

func (s *PostgresTradeStore) list(
	ctx context.Context,
	log *slog.Logger,
	where string,
	args ...any,
) ([]*domain.Trade, error) {
	query := tradeReadQuery + ` WHERE ` + where + ` ORDER BY t.created_at DESC, t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query trades", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	trades := []*domain.Trade{}
	for rows.Next() {
		trade, err := scanTradeDetail(rows)
		if err != nil {
			log.Error("failed to scan trade row", slog.String("error", err.Error()))
			return nil, err
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return trades, nil
}

// ListByUser implements store.TradeStore.ListByUser
func (s *PostgresTradeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))
	return s.list(ctx, log, `(t.initiator_id = $1 OR t.recipient_id = $1)`, userID)
}

// ListPendingByRecipient implements store.TradeStore.ListPendingByRecipient
func (s *PostgresTradeStore) ListPendingByRecipient(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))
	return s.list(ctx, log, `t.recipient_id = $1 AND t.status = $2`, userID, string(domain.TradeStatusPending))
}

// ListPendingByInitiator implements store.TradeStore.ListPendingByInitiator
func (s *PostgresTradeStore) ListPendingByInitiator(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))
	return s.list(ctx, log, `t.initiator_id = $1 AND t.status = $2`, userID, string(domain.TradeStatusPending))
}

// ExistsPendingForPair implements store.TradeStore.ExistsPendingForPair
// The LEAST/GREATEST expressions match the pending pair index.
func (s *PostgresTradeStore) ExistsPendingForPair(ctx context.Context, pair domain.BookPair) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM book_trades
			WHERE LEAST(initiator_book_id, recipient_book_id) = $1
			  AND GREATEST(initiator_book_id, recipient_book_id) = $2
			  AND status = $3
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, pair.Low, pair.High, string(domain.TradeStatusPending)).Scan(&exists)
	if err != nil {
		log.Error("failed to check pending trade for pair",
			slog.String("error", err.Error()),
			slog.String("book_low", pair.Low.String()),
			slog.String("book_high", pair.High.String()))
		return false, err
	}

	return exists, nil
}

// UpdateStatusIfPending implements store.TradeStore.UpdateStatusIfPending
func (s *PostgresTradeStore) UpdateStatusIfPending(
	ctx context.Context,
	id uuid.UUID,
	status domain.TradeStatus,
) (*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.TradeStatusPending.CanTransitionTo(status) {
		log.Warn("rejected trade status transition",
			slog.String("trade_id", id.String()),
			slog.String("status", string(status)))
		return nil, domain.ErrTradeStatusTransition
	}

	query := `
		UPDATE book_trades
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + tradeColumns

	trade, err := scanTrade(s.db.QueryRowContext(
		ctx,
		query,
		string(status),
		time.Now().UTC(),
		id,
		string(domain.TradeStatusPending),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyMiss(ctx, log, id)
		}
		log.Error("failed to update trade status",
			slog.String("error", err.Error()),
			slog.String("trade_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("trade status updated",
		slog.String("trade_id", id.String()),
		slog.String("status", string(status)))
	return trade, nil
}

// DeletePending implements store.TradeStore.DeletePending
func (s *PostgresTradeStore) DeletePending(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM book_trades WHERE id = $1 AND status = $2`,
		id,
		string(domain.TradeStatusPending),
	)
	if err != nil {
		log.Error("failed to delete trade",
			slog.String("error", err.Error()),
			slog.String("trade_id", id.String()))
		return MapError(err)
	}

	if err := rowsAffected(result, errNoRowsMatched); err != nil {
		if errors.Is(err, errNoRowsMatched) {
			return s.classifyMiss(ctx, log, id)
		}
		log.Error("failed to read delete result",
			slog.String("error", err.Error()),
			slog.String("trade_id", id.String()))
		return err
	}

	log.Info("pending trade deleted", slog.String("trade_id", id.String()))
	return nil
}

var errNoRowsMatched = errors.New("no rows matched")

// classifyMiss explains why a conditional write on a trade matched nothing:
// either the trade is gone or it has left the pending status.
func (s *PostgresTradeStore) classifyMiss(ctx context.Context, log *slog.Logger, id uuid.UUID) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	log.Debug("trade no longer pending",
		slog.String("trade_id", id.String()),
		slog.String("status", string(current.Status)))
	return store.ErrTradeNotPending
}
