package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/bookswap-api/internal/platform/logger"
)

// AuditLogHandler writes one structured log line per trade event.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates a handler writing to l.
func NewAuditLogHandler(l *slog.Logger) *AuditLogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuditLogHandler{logger: l.With("component", "trade_audit")}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *TradeEvent) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("trade event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("trade_id", event.TradeID.String()),
		slog.String("actor_id", event.ActorID.String()),
		slog.Time("occurred_at", event.CreatedAt))
	return nil
}
