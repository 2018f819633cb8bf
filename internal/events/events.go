package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Trade lifecycle event types
const (
	TradeProposed  = "trade.proposed"
	TradeAccepted  = "trade.accepted"
	TradeRejected  = "trade.rejected"
	TradeCancelled = "trade.cancelled"
)

// TradeEvent records a single change to a trade.
type TradeEvent struct {
	ID uuid.UUID `json:"id"`

	Type string `json:"type"`

	TradeID uuid.UUID `json:"trade_id"`

	// ActorID is the user whose request caused the change.
	ActorID uuid.UUID `json:"actor_id"`

	// Payload is a JSON snapshot of the trade after the change.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the trade snapshot into v.
func (e *TradeEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTradeEvent builds an event, serializing snapshot as its payload.
func NewTradeEvent(eventType string, tradeID, actorID uuid.UUID, snapshot interface{}) (*TradeEvent, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	return &TradeEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TradeID:   tradeID,
		ActorID:   actorID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines the interface for components that react to trade events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TradeEvent) error
}

// EventEmitter defines the interface for publishing trade events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TradeEvent) error
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NoopEmitter) EmitEvent(context.Context, *TradeEvent) error { return nil }
