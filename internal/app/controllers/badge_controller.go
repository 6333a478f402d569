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

// BadgeController serves the badge catalog and awards
type BadgeController struct {
	badgeService services.BadgeService
	logger       zerolog.Logger
}

// NewBadgeController creates a new BadgeController
func NewBadgeController(badgeService services.BadgeService, logger zerolog.Logger) *BadgeController {
	return &BadgeController{
		badgeService: badgeService,
		logger:       logger,
	}
}

// List returns the badge catalog
// @Summary List badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Badge
// @Router /badges [get]
func (c *BadgeController) List(ctx *gin.Context) {
	badges, err := c.badgeService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, badges)
}

// Mine returns the caller's badges
// @Summary My badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserBadgeResponse
// @Router /badges/my [get]
func (c *BadgeController) Mine(ctx *gin.Context) {
	c.respondForUser(ctx, currentUserID(ctx))
}

// ForUser returns another user's badges
// @Summary User badges
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {array} dto.UserBadgeResponse
// @Router /badges/user/{userId} [get]
func (c *BadgeController) ForUser(ctx *gin.Context) {
	userID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.respondForUser(ctx, userID)
}

func (c *BadgeController) respondForUser(ctx *gin.Context, userID int64) {
	badges, err := c.badgeService.ForUser(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewUserBadgeResponses(badges))
}

// Award grants a catalog badge
// @Summary Award badge
// @Tags badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AwardBadgeRequest true "Award"
// @Success 200 {object} dto.ActionResponse
// @Failure 400 {object} dto.ErrorResponse "Already awarded"
// @Failure 404 {object} dto.ErrorResponse "Unknown badge or user"
// @Router /badges/award [post]
func (c *BadgeController) Award(ctx *gin.Context) {
	var req dto.AwardBadgeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	if err := c.badgeService.Award(ctx.Request.Context(), currentUserID(ctx), req.UserID, req.BadgeName, req.WorkshopID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Badge awarded successfully"})
}
