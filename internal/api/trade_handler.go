package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/api/shared"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/platform/logger"
	"github.com/phrazzld/bookswap-api/internal/service/trade"
)

// TradeHandler exposes the trade proposal workflow.
type TradeHandler struct {
	tradeService trade.Service
	logger       *slog.Logger
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService trade.Service, logger *slog.Logger) *TradeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeHandler{
		tradeService: tradeService,
		logger:       logger.With(slog.String("component", "trade_handler")),
	}
}

// ProposeTrade handles POST /trades/propose.
func (h *TradeHandler) ProposeTrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ProposeTradeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	// Both IDs passed the uuid tag, so parsing cannot fail.
	initiatorBookID := uuid.MustParse(req.InitiatorBookID)
	recipientBookID := uuid.MustParse(req.RecipientBookID)

	t, err := h.tradeService.ProposeTrade(r.Context(), userID, initiatorBookID, recipientBookID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to propose trade")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tradeToResponse(t))
}

// RespondToTrade handles PUT /trades/{id}/respond.
func (h *TradeHandler) RespondToTrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, tradeID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RespondTradeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	t, err := h.tradeService.RespondToTrade(r.Context(), tradeID, domain.TradeStatus(req.Response), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to respond to trade")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tradeToResponse(t))
}

// CancelTrade handles DELETE /trades/{id}/cancel.
func (h *TradeHandler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, tradeID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if _, err := h.tradeService.CancelTrade(r.Context(), tradeID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to cancel trade")
		return
	}

	shared.RespondWithNoContent(w)
}

// GetTrade handles GET /trades/{id}.
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	t, err := h.tradeService.GetTrade(r.Context(), tradeID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get trade")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tradeToResponse(t))
}

type tradeLister func(ctx context.Context, userID uuid.UUID) ([]*domain.Trade, error)

func (h *TradeHandler) listTrades(w http.ResponseWriter, r *http.Request, list tradeLister) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	trades, err := list(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list trades")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tradesToResponse(trades))
}

// ListMyTrades handles GET /trades/my-trades.
func (h *TradeHandler) ListMyTrades(w http.ResponseWriter, r *http.Request) {
	h.listTrades(w, r, h.tradeService.GetUserTrades)
}

// ListIncomingTrades handles GET /trades/incoming.
func (h *TradeHandler) ListIncomingTrades(w http.ResponseWriter, r *http.Request) {
	h.listTrades(w, r, h.tradeService.GetIncomingTrades)
}

// ListOutgoingTrades handles GET /trades/outgoing.
func (h *TradeHandler) ListOutgoingTrades(w http.ResponseWriter, r *http.Request) {
	h.listTrades(w, r, h.tradeService.GetOutgoingTrades)
}
