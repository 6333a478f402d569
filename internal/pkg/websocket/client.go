package websocket

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxMessageSize = 8 * 1024

	sendBuffer = 256
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// NewUpgrader builds the websocket upgrader. An empty allowedOrigins list
// accepts every origin.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// IncomingMessage is a frame sent by a subscriber
type IncomingMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub *Hub

	// nil in tests that exercise the hub alone
	conn *websocket.Conn

	// Buffered channel of outbound frames
	send chan []byte

	userID     int64
	workshopID int64
	addr       string

	// Handles frames sent by the peer; nil means frames are ignored
	onMessage func(*Client, *IncomingMessage)

	logger zerolog.Logger
}

// NewClient creates a client subscribed to workshopID
func NewClient(hub *Hub, conn *websocket.Conn, userID, workshopID int64, logger zerolog.Logger) *Client {
	addr := ""
	if conn != nil {
		addr = conn.RemoteAddr().String()
	}
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		userID:     userID,
		workshopID: workshopID,
		addr:       addr,
		logger:     logger,
	}
}

// UserID returns the subscriber's user id
func (c *Client) UserID() int64 { return c.userID }

// WorkshopID returns the workshop the client is subscribed to
func (c *Client) WorkshopID() int64 { return c.workshopID }

// SendEvent queues an event for this client only. It drops the event when
// the client's buffer is full.
func (c *Client) SendEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(&Event{
		Type:       eventType,
		WorkshopID: c.workshopID,
		Payload:    payload,
		Timestamp:  time.Now(),
	})
	if err != nil {
		c.logger.Error().Err(err).Int64("userID", c.userID).Msg("Failed to marshal client event")
		return
	}

	defer func() {
		// send is closed once the hub drops the client
		_ = recover()
	}()

	select {
	case c.send <- data:
	default:
	}
}

// readPump pumps frames from the websocket connection to onMessage
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().
					Int64("userID", c.userID).
					Int64("workshopID", c.workshopID).
					Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().
					Err(err).
					Int64("userID", c.userID).
					Int64("workshopID", c.workshopID).
					Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().
					Err(err).
					Int64("userID", c.userID).
					Int64("workshopID", c.workshopID).
					Msg("WebSocket read error")
			}
			break
		}

		if c.onMessage == nil {
			continue
		}

		frame = bytes.TrimSpace(bytes.Replace(frame, newline, space, -1))

		var msg IncomingMessage
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.logger.Debug().
				Err(err).
				Int64("userID", c.userID).
				Int64("workshopID", c.workshopID).
				Msg("Failed to unmarshal client frame")
			c.SendEvent(EventError, map[string]string{"error": "Invalid message format"})
			continue
		}

		c.onMessage(c, &msg)
	}
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(frame)

			// Flush queued frames in the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
