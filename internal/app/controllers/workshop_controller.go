package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/helpers"
)

// WorkshopController handles workshop scheduling and lifecycle
type WorkshopController struct {
	workshopService services.WorkshopService
	logger          zerolog.Logger
}

// NewWorkshopController creates a new WorkshopController
func NewWorkshopController(workshopService services.WorkshopService, logger zerolog.Logger) *WorkshopController {
	return &WorkshopController{
		workshopService: workshopService,
		logger:          logger,
	}
}

// List returns workshops, optionally filtered by status
// @Summary List workshops
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param status query string false "scheduled, live or completed"
// @Success 200 {array} dto.WorkshopResponse
// @Router /workshops [get]
func (c *WorkshopController) List(ctx *gin.Context) {
	workshops, err := c.workshopService.List(ctx.Request.Context(), ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewWorkshopResponses(workshops))
}

// Get returns a workshop with its roster
// @Summary Get workshop
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Success 200 {object} dto.WorkshopDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /workshops/{id} [get]
func (c *WorkshopController) Get(ctx *gin.Context) {
	workshopID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	detail, err := c.workshopService.Get(ctx.Request.Context(), workshopID, currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewWorkshopDetailResponse(detail))
}

// Create schedules a workshop with the caller as instructor
// @Summary Create workshop
// @Description Duration defaults to 60 minutes and capacity to 50.
// @Tags workshops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateWorkshopRequest true "Workshop"
// @Success 201 {object} dto.WorkshopResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /workshops [post]
func (c *WorkshopController) Create(ctx *gin.Context) {
	var req dto.CreateWorkshopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	draft := models.WorkshopDraft{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Duration != nil {
		draft.Duration = *req.Duration
	}
	if req.MaxParticipants != nil {
		draft.MaxParticipants = *req.MaxParticipants
	}
	if raw := strings.TrimSpace(req.ScheduledAt); raw != "" {
		at, err := helpers.ParseTimestamp(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid scheduled time"))
			return
		}
		draft.ScheduledAt = &at
	}

	workshop, err := c.workshopService.Create(ctx.Request.Context(), currentUserID(ctx), draft)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewWorkshopResponse(workshop))
}

// workshopAction runs a lifecycle operation on the :id workshop
func (c *WorkshopController) workshopAction(ctx *gin.Context, op func(workshopID, userID int64) error) bool {
	workshopID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	if err := op(workshopID, currentUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	return true
}

// Join adds the caller to a workshop that still has room
// @Summary Join workshop
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Success 200 {object} dto.ActionResponse
// @Failure 400 {object} dto.ErrorResponse "Full, completed or already joined"
// @Router /workshops/{id}/join [post]
func (c *WorkshopController) Join(ctx *gin.Context) {
	ok := c.workshopAction(ctx, func(workshopID, userID int64) error {
		return c.workshopService.Join(ctx.Request.Context(), workshopID, userID)
	})
	if ok {
		ctx.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Joined workshop successfully"})
	}
}

// Leave removes the caller from a workshop
// @Summary Leave workshop
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Success 200 {object} dto.ActionResponse
// @Router /workshops/{id}/leave [post]
func (c *WorkshopController) Leave(ctx *gin.Context) {
	ok := c.workshopAction(ctx, func(workshopID, userID int64) error {
		return c.workshopService.Leave(ctx.Request.Context(), workshopID, userID)
	})
	if ok {
		ctx.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Left workshop successfully"})
	}
}

// Start moves a scheduled workshop to live. Instructor only.
// @Summary Start workshop
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Success 200 {object} dto.ActionResponse
// @Failure 400 {object} dto.ErrorResponse "Not scheduled"
// @Failure 403 {object} dto.ErrorResponse "Not the instructor"
// @Router /workshops/{id}/start [post]
func (c *WorkshopController) Start(ctx *gin.Context) {
	ok := c.workshopAction(ctx, func(workshopID, userID int64) error {
		return c.workshopService.Start(ctx.Request.Context(), workshopID, userID)
	})
	if ok {
		ctx.JSON(http.StatusOK, dto.ActionResponse{
			Success: true,
			Message: "Workshop started",
			Status:  string(models.WorkshopLive),
		})
	}
}

// End completes a live workshop and awards the attendee badge
// @Summary End workshop
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Success 200 {object} dto.EndWorkshopResponse
// @Failure 400 {object} dto.ErrorResponse "Not live"
// @Failure 403 {object} dto.ErrorResponse "Not the instructor"
// @Router /workshops/{id}/end [post]
func (c *WorkshopController) End(ctx *gin.Context) {
	var awarded int64
	ok := c.workshopAction(ctx, func(workshopID, userID int64) error {
		var err error
		awarded, err = c.workshopService.End(ctx.Request.Context(), workshopID, userID)
		return err
	})
	if ok {
		ctx.JSON(http.StatusOK, dto.EndWorkshopResponse{
			Success:       true,
			Message:       "Workshop ended. Badges awarded to participants.",
			Status:        string(models.WorkshopCompleted),
			BadgesAwarded: awarded,
		})
	}
}

// Attend records the caller's attendance
// @Summary Mark attendance
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param id path int true "Workshop ID"
// @Success 200 {object} dto.ActionResponse
// @Router /workshops/{id}/attend [post]
func (c *WorkshopController) Attend(ctx *gin.Context) {
	ok := c.workshopAction(ctx, func(workshopID, userID int64) error {
		return c.workshopService.MarkAttendance(ctx.Request.Context(), workshopID, userID)
	})
	if ok {
		ctx.JSON(http.StatusOK, dto.ActionResponse{Success: true, Message: "Attendance marked"})
	}
}
