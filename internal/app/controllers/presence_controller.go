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

// PresenceController tracks who is online
type PresenceController struct {
	presenceService services.PresenceService
	logger          zerolog.Logger
}

// NewPresenceController creates a new PresenceController
func NewPresenceController(presenceService services.PresenceService, logger zerolog.Logger) *PresenceController {
	return &PresenceController{
		presenceService: presenceService,
		logger:          logger,
	}
}

// Heartbeat marks the caller online
// @Summary Presence heartbeat
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PresenceUpdateResponse
// @Router /presence/heartbeat [post]
func (c *PresenceController) Heartbeat(ctx *gin.Context) {
	if err := c.presenceService.Heartbeat(ctx.Request.Context(), currentUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.PresenceUpdateResponse{Success: true, Online: true})
}

// Offline marks the caller offline
// @Summary Go offline
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PresenceUpdateResponse
// @Router /presence/offline [post]
func (c *PresenceController) Offline(ctx *gin.Context) {
	if err := c.presenceService.Offline(ctx.Request.Context(), currentUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.PresenceUpdateResponse{Success: true, Online: false})
}

// Get returns one user's presence
// @Summary User presence
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} dto.PresenceResponse
// @Router /presence/{userId} [get]
func (c *PresenceController) Get(ctx *gin.Context) {
	userID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	p, err := c.presenceService.Get(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.PresenceResponse{UserID: p.UserID, IsOnline: p.IsOnline, LastSeen: p.LastSeen})
}

// Connections returns the presence of every connection keyed by user id
// @Summary Connections presence
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]dto.PresenceEntry
// @Router /presence/connections/status [get]
func (c *PresenceController) Connections(ctx *gin.Context) {
	presence, err := c.presenceService.Connections(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPresenceMap(presence))
}
