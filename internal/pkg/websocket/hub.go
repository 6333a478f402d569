package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const broadcastBuffer = 256

// Hub fans workshop events out to the clients subscribed to each workshop
type Hub struct {
	// Registered clients organized by workshop ID
	clients map[int64]map[*Client]bool

	broadcast  chan *Event
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients and stopped
	mu      sync.RWMutex
	stopped bool

	logger zerolog.Logger
}

// Event is a frame pushed to workshop subscribers
type Event struct {
	// Type of event: "message", "status" or "error"
	Type string `json:"type"`

	WorkshopID int64       `json:"workshopId"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *Event, broadcastBuffer),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled. All
// client send channels are closed on return.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Publish queues an event for every subscriber of workshopID. It never
// blocks; events are dropped when the queue is full.
func (h *Hub) Publish(workshopID int64, eventType string, payload interface{}) {
	event := &Event{
		Type:       eventType,
		WorkshopID: workshopID,
		Payload:    payload,
		Timestamp:  time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().
			Int64("workshopID", workshopID).
			Str("type", eventType).
			Msg("Broadcast queue full, event dropped")
	}
}

// Register subscribes client. The client receives every event published
// after Register returns. It reports false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return false
	}

	workshopID := client.workshopID
	if _, ok := h.clients[workshopID]; !ok {
		h.clients[workshopID] = make(map[*Client]bool)
	}
	h.clients[workshopID][client] = true

	h.logger.Info().
		Int64("workshopID", workshopID).
		Int64("userID", client.userID).
		Str("addr", client.addr).
		Msg("Client registered")
	return true
}

// Unregister removes client; it is a no-op once the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Disconnect drops every client userID holds on workshopID. Their send
// channels are closed, so the write pumps end the connections.
func (h *Hub) Disconnect(workshopID, userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[workshopID] {
		if client.userID == userID {
			h.removeLocked(client)
		}
	}
}

// ClientCount returns the number of subscribers of a workshop
func (h *Hub) ClientCount(workshopID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[workshopID])
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	workshopID := client.workshopID
	clients, ok := h.clients[workshopID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, workshopID)
	}

	h.logger.Info().
		Int64("workshopID", workshopID).
		Int64("userID", client.userID).
		Str("addr", client.addr).
		Msg("Client unregistered")
}

func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("workshopID", event.WorkshopID).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.WorkshopID]
	if !ok {
		return
	}

	delivered := 0
	for client := range clients {
		select {
		case client.send <- data:
			delivered++
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("workshopID", event.WorkshopID).
		Str("type", event.Type).
		Int("clientCount", delivered).
		Msg("Event broadcasted to workshop")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}
