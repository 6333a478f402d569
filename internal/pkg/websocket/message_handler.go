package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// Event types pushed to subscribers
const (
	EventMessage = "message"
	EventStatus  = "status"
	EventError   = "error"
)

const postTimeout = 5 * time.Second

// ChatPoster stores a workshop chat message after checking the workshop is
// live and the author is a member. Successful posts are broadcast by the
// poster itself.
type ChatPoster interface {
	PostMessage(ctx context.Context, workshopID, userID int64, content string) (*models.WorkshopMessage, error)
}

// AuthorChecker re-reads whether a subscriber may still write
type AuthorChecker interface {
	EnsureProfileCompleted(ctx context.Context, userID int64) error
}

// MessageHandler routes frames sent over a socket into the chat service
type MessageHandler struct {
	poster  ChatPoster
	authors AuthorChecker
	logger  zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(poster ChatPoster, authors AuthorChecker, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		poster:  poster,
		authors: authors,
		logger:  logger,
	}
}

// HandleIncoming posts a chat frame on behalf of the client. Failures are
// reported to the sender only.
func (h *MessageHandler) HandleIncoming(c *Client, msg *IncomingMessage) {
	if msg.Type != EventMessage {
		c.SendEvent(EventError, map[string]string{
			"error": "Unsupported message type",
			"code":  apperrors.CodeValidationFailed,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()

	err := h.authors.EnsureProfileCompleted(ctx, c.userID)
	if err == nil {
		_, err = h.poster.PostMessage(ctx, c.workshopID, c.userID, msg.Content)
	}
	if err != nil {
		h.logger.Debug().
			Err(err).
			Int64("workshopID", c.workshopID).
			Int64("userID", c.userID).
			Msg("Rejected chat message from socket")
		c.SendEvent(EventError, map[string]string{
			"error": apperrors.MessageOf(err),
			"code":  apperrors.CodeOf(err),
		})
	}
}
