package websocket

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/helpers"
)

// SubscriptionAuthorizer decides whether a user may follow a workshop's chat
type SubscriptionAuthorizer interface {
	AuthorizeSubscription(ctx context.Context, workshopID, userID int64) error
}

// ErrorWriter renders an error response. The API's central error handler
// satisfies it.
type ErrorWriter func(c *gin.Context, err error)

// Handler for WebSocket connections
type Handler struct {
	hub        *Hub
	access     SubscriptionAuthorizer
	messages   *MessageHandler
	upgrader   websocket.Upgrader
	writeError ErrorWriter
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(
	hub *Hub,
	access SubscriptionAuthorizer,
	messages *MessageHandler,
	upgrader websocket.Upgrader,
	writeError ErrorWriter,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		hub:        hub,
		access:     access,
		messages:   messages,
		upgrader:   upgrader,
		writeError: writeError,
		logger:     logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to a workshop chat
// @Description Upgrades the connection to a WebSocket that receives chat and status events of the workshop. Frames of type "message" are posted to the chat.
// @Tags workshops, websocket
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Param token query string false "JWT when headers cannot be set"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Invalid workshop ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the instructor or a participant"
// @Failure 404 {object} dto.ErrorResponse "Workshop not found"
// @Router /workshops/{id}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	workshopID, err := helpers.ParseIDParam(c, "id")
	if err != nil {
		h.writeError(c, err)
		return
	}

	userID := c.GetInt64("userID")
	if userID == 0 {
		h.writeError(c, apperrors.NewUnauthenticatedError("Authentication required"))
		return
	}

	if err := h.access.AuthorizeSubscription(c.Request.Context(), workshopID, userID); err != nil {
		h.writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the peer
		h.logger.Error().
			Err(err).
			Int64("workshopID", workshopID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := NewClient(h.hub, conn, userID, workshopID, h.logger)
	if h.messages != nil {
		client.onMessage = h.messages.HandleIncoming
	}
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	// A leave that landed between the first check and Register has
	// already run its Disconnect
	if err := h.access.AuthorizeSubscription(c.Request.Context(), workshopID, userID); err != nil {
		h.hub.Unregister(client)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("workshopID", workshopID).
		Int64("userID", userID).
		Str("remoteAddr", client.addr).
		Msg("WebSocket connection established")
}
