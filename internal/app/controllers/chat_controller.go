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

// ChatController handles workshop chat messages
type ChatController struct {
	chatService services.WorkshopChatService
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.WorkshopChatService, logger zerolog.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		logger:      logger,
	}
}

// GetMessages godoc
// @Summary Get workshop chat messages
// @Description Returns up to 200 messages in posting order. History stays readable after the workshop ends.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Param since query int false "Only messages with a larger id"
// @Success 200 {array} dto.WorkshopMessageResponse
// @Failure 403 {object} dto.ErrorResponse "Not a participant or the instructor"
// @Failure 404 {object} dto.ErrorResponse "Workshop not found"
// @Router /workshops/{id}/messages [get]
func (c *ChatController) GetMessages(ctx *gin.Context) {
	workshopID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	since, _, err := helpers.ParseOptionalInt64Query(ctx, "since")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	messages, err := c.chatService.ListMessages(ctx.Request.Context(), workshopID, currentUserID(ctx), since)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewWorkshopMessageResponses(messages))
}

// PostMessage godoc
// @Summary Post workshop chat message
// @Description Only allowed while the workshop is live. Subscribers on the websocket receive the message too.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Param request body dto.PostWorkshopMessageRequest true "Message"
// @Success 201 {object} dto.WorkshopMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Empty content or workshop not live"
// @Failure 403 {object} dto.ErrorResponse "Not a participant or the instructor"
// @Router /workshops/{id}/messages [post]
func (c *ChatController) PostMessage(ctx *gin.Context) {
	workshopID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.PostWorkshopMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	message, err := c.chatService.PostMessage(ctx.Request.Context(), workshopID, currentUserID(ctx), req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewWorkshopMessageResponse(message))
}
