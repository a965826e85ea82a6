package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cwbudde/yuvsobel/internal/store"
)

// EventType names what happened to a result.
type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

// ResultEvent is pushed to SSE clients when a result is created or deleted
type ResultEvent struct {
	Type      EventType     `json:"type"`
	ID        string        `json:"id"`
	Result    *store.Result `json:"result,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// EventBroadcaster fans result events out to SSE subscribers
type EventBroadcaster struct {
	mu      sync.RWMutex
	clients map[chan ResultEvent]bool
	closed  bool
}

// NewEventBroadcaster creates a new event broadcaster
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients: make(map[chan ResultEvent]bool),
	}
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close.
func (eb *EventBroadcaster) Subscribe() chan ResultEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ResultEvent, 10) // Buffered to prevent blocking
	if eb.closed {
		close(ch)
		return ch
	}
	eb.clients[ch] = true

	slog.Debug("SSE client subscribed", "total_clients", len(eb.clients))
	return ch
}

// Unsubscribe removes a client from receiving events
func (eb *EventBroadcaster) Unsubscribe(ch chan ResultEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.clients[ch] {
		delete(eb.clients, ch)
		close(ch)
	}
	slog.Debug("SSE client unsubscribed", "total_clients", len(eb.clients))
}

// Broadcast sends an event to every subscriber. Slow clients miss events
// instead of blocking the request that produced them.
func (eb *EventBroadcaster) Broadcast(event ResultEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for ch := range eb.clients {
		select {
		case ch <- event:
		default:
			slog.Warn("SSE channel full, skipping event", "id", event.ID)
		}
	}
}

// Close disconnects every subscriber.
func (eb *EventBroadcaster) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for ch := range eb.clients {
		close(ch)
	}
	eb.clients = make(map[chan ResultEvent]bool)
	eb.closed = true
}

// Clients returns the number of connected subscribers.
func (eb *EventBroadcaster) Clients() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.clients)
}

// handleEvents handles GET /api/v1/events as a server-sent event stream
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(eventChan)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected")
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes an event in SSE format
func writeSSEEvent(w http.ResponseWriter, event ResultEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
