package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/events"
)

// streamableTypes lists every event type forwarded to SSE clients.
var streamableTypes = []events.EventType{
	events.SolveStarted,
	events.SolveProgress,
	events.SolveCompleted,
	events.SolveFailed,
	events.MarketDataRefreshed,
	events.JobStarted,
	events.JobProgress,
	events.JobCompleted,
	events.JobFailed,
	events.SystemStatusChanged,
	events.ErrorOccurred,
}

// streamClient is one connected SSE consumer.
type streamClient struct {
	ch      chan *events.Event
	allowed map[events.EventType]bool
}

// EventsStreamHandler fans bus events out over Server-Sent Events.
type EventsStreamHandler struct {
	log               zerolog.Logger
	heartbeatInterval time.Duration

	mu      sync.RWMutex
	clients map[*streamClient]struct{}
}

// NewEventsStreamHandler creates the stream handler and subscribes it to
// the bus once. Connections register with the handler rather than the
// bus, so a disconnect leaves nothing behind.
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	h := &EventsStreamHandler{
		log:               log.With().Str("component", "events_stream").Logger(),
		heartbeatInterval: 30 * time.Second,
		clients:           make(map[*streamClient]struct{}),
	}

	if bus != nil {
		for _, eventType := range streamableTypes {
			bus.Subscribe(eventType, h.broadcast)
		}
	}

	return h
}

// broadcast forwards one bus event to every connected client.
func (h *EventsStreamHandler) broadcast(event *events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.allowed != nil && !client.allowed[event.Type] {
			continue
		}

		// Non-blocking send (drop if channel full)
		select {
		case client.ch <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}
}

// ServeHTTP handles GET /api/events/stream requests (SSE).
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("Could not clear write deadline")
	}

	typesFilter := r.URL.Query().Get("types")
	client := &streamClient{
		ch:      make(chan *events.Event, 100), // Buffer to prevent blocking
		allowed: parseTypesFilter(typesFilter),
	}

	h.register(client)
	defer h.unregister(client)

	h.log.Info().
		Str("types_filter", typesFilter).
		Msg("Client connected to event stream")

	done := r.Context().Done()

	// Send initial connection message
	fmt.Fprintf(w, "data: %s\n\n", h.encode(map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	}))
	flusher.Flush()

	// Heartbeat ticker to keep connection alive
	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-client.ch:
			data, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Msg("Failed to marshal event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "data: %s\n\n", h.encode(map[string]interface{}{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			}))
			flusher.Flush()
		}
	}
}

func (h *EventsStreamHandler) register(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *EventsStreamHandler) unregister(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

func (h *EventsStreamHandler) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// parseTypesFilter turns a comma-separated type list into a set. A nil
// set means every streamable type.
func parseTypesFilter(filter string) map[events.EventType]bool {
	if filter == "" {
		return nil
	}

	allowed := make(map[events.EventType]bool)
	for _, t := range strings.Split(filter, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			allowed[events.EventType(trimmed)] = true
		}
	}
	return allowed
}

// encode marshals an ad-hoc message for the wire.
func (h *EventsStreamHandler) encode(message map[string]interface{}) string {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal message")
		return `{"error":"failed to encode message"}`
	}
	return string(data)
}
