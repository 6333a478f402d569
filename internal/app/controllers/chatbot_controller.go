package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
)

// ChatbotController exposes the campus assistant
type ChatbotController struct {
	chatbotService *services.ChatbotService
	logger         zerolog.Logger
}

// NewChatbotController creates a new ChatbotController
func NewChatbotController(chatbotService *services.ChatbotService, logger zerolog.Logger) *ChatbotController {
	return &ChatbotController{
		chatbotService: chatbotService,
		logger:         logger,
	}
}

// Ask forwards a question and recent history to the assistant
// @Summary Ask the assistant
// @Tags chatbot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChatbotRequest true "Question"
// @Success 200 {object} dto.ChatbotResponse
// @Failure 503 {object} dto.ErrorResponse "Assistant not configured"
// @Router /chatbot [post]
func (c *ChatbotController) Ask(ctx *gin.Context) {
	var req dto.ChatbotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	history := make([]services.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, services.ChatTurn{Role: turn.Role, Content: turn.Content})
	}

	reply, err := c.chatbotService.Ask(ctx.Request.Context(), currentUserID(ctx), req.Message, history)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ChatbotResponse{Message: reply.Message, Model: reply.Model})
}
