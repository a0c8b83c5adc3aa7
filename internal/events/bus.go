package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a kind of event on the bus.
type EventType string

const (
	// Solver lifecycle
	SolveStarted   EventType = "solve_started"
	SolveProgress  EventType = "solve_progress"
	SolveCompleted EventType = "solve_completed"
	SolveFailed    EventType = "solve_failed"

	// Market data
	MarketDataRefreshed EventType = "market_data_refreshed"

	// Scheduled jobs
	JobStarted   EventType = "job_started"
	JobProgress  EventType = "job_progress"
	JobCompleted EventType = "job_completed"
	JobFailed    EventType = "job_failed"

	// System
	SystemStatusChanged EventType = "system_status_changed"
	ErrorOccurred       EventType = "error_occurred"
)

// Event is one published occurrence. Data carries a loose key-value payload;
// typed payloads travel alongside it and are preferred when present.
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`

	typedData EventData
}

// GetTypedData returns the typed payload, nil for untyped events.
func (e *Event) GetTypedData() EventData {
	return e.typedData
}

// MarshalJSON serializes the event, preferring the typed payload.
func (e *Event) MarshalJSON() ([]byte, error) {
	payload := struct {
		Type      EventType   `json:"type"`
		Module    string      `json:"module,omitempty"`
		Timestamp time.Time   `json:"timestamp"`
		Data      interface{} `json:"data,omitempty"`
	}{
		Type:      e.Type,
		Module:    e.Module,
		Timestamp: e.Timestamp,
	}
	if e.typedData != nil {
		payload.Data = e.typedData
	} else if len(e.Data) > 0 {
		payload.Data = e.Data
	}
	return json.Marshal(payload)
}

// Handler receives published events.
type Handler func(*Event)

// Bus is an in-process publish/subscribe hub. Handlers run synchronously on
// the publisher's goroutine, so they must not block.
type Bus struct {
	handlers map[EventType][]Handler
	mu       sync.RWMutex
	log      zerolog.Logger
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler must not be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug().Str("type", string(eventType)).Msg("Subscribed handler")
	return nil
}

// Publish delivers the event to every handler subscribed to its type. A zero
// timestamp is filled in with the current time.
func (b *Bus) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// Emit publishes a loose key-value event.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	b.Publish(&Event{Type: eventType, Module: module, Data: data})
}

// EmitTyped publishes an event with a typed payload.
func (b *Bus) EmitTyped(eventType EventType, module string, data EventData) {
	b.Publish(&Event{Type: eventType, Module: module, typedData: data})
}
