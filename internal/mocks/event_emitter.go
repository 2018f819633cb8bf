package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/bookswap-api/internal/events"
)

// MockEventEmitter records every emitted event.
type MockEventEmitter struct {
	EmitEventFn func(ctx context.Context, event *events.TradeEvent) error

	mu     sync.Mutex
	events []*events.TradeEvent
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TradeEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return nil
}

// Events returns the emitted events in order.
func (m *MockEventEmitter) Events() []*events.TradeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.TradeEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the type of each emitted event in order.
func (m *MockEventEmitter) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}
