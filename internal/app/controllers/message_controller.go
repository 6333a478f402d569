package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/helpers"
)

// MessageController handles direct messages between connections
type MessageController struct {
	messageService services.MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		logger:         logger,
	}
}

// Threads returns the caller's inbox
// @Summary List message threads
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ThreadResponse
// @Router /messages [get]
func (c *MessageController) Threads(ctx *gin.Context) {
	userID := currentUserID(ctx)
	threads, err := c.messageService.ListThreads(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewThreadResponses(threads, userID))
}

// UnreadCount returns how many messages from connections are unread
// @Summary Unread message count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UnreadCountResponse
// @Router /messages/unread/count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	count, err := c.messageService.UnreadCount(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.UnreadCountResponse{UnreadCount: count})
}

// Conversation returns the full exchange with one connection
// @Summary Get conversation
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.ConversationResponse
// @Failure 403 {object} dto.ErrorResponse "NOT_CONNECTED"
// @Router /messages/{userId} [get]
func (c *MessageController) Conversation(ctx *gin.Context) {
	otherID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	userID := currentUserID(ctx)
	other, messages, err := c.messageService.Conversation(ctx.Request.Context(), userID, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewConversationResponse(other, messages, userID))
}

// Send delivers a direct message. Only accepted connections may message each other.
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Receiver user ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.DirectMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Empty content"
// @Failure 403 {object} dto.ErrorResponse "NOT_CONNECTED"
// @Router /messages/{userId} [post]
func (c *MessageController) Send(ctx *gin.Context) {
	receiverID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	userID := currentUserID(ctx)
	message, err := c.messageService.Send(ctx.Request.Context(), userID, receiverID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewDirectMessageResponse(message, userID))
}

// MarkRead marks everything the other user sent the caller as read
// @Summary Mark conversation read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.MarkReadResponse
// @Router /messages/{userId}/read [put]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	otherID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	updated, err := c.messageService.MarkRead(ctx.Request.Context(), currentUserID(ctx), otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MarkReadResponse{Message: "Messages marked as read", UpdatedCount: updated})
}
