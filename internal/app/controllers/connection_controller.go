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

// ConnectionController handles the connection graph endpoints
type ConnectionController struct {
	connectionService services.ConnectionService
	logger            zerolog.Logger
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService, logger zerolog.Logger) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
		logger:            logger,
	}
}

// List returns the caller's accepted connections
// @Summary List connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ConnectionResponse
// @Router /connections [get]
func (c *ConnectionController) List(ctx *gin.Context) {
	entries, err := c.connectionService.ListConnections(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewConnectionResponses(entries, true))
}

// Incoming returns pending requests sent to the caller
// @Summary List incoming requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ConnectionResponse
// @Router /connections/requests [get]
func (c *ConnectionController) Incoming(ctx *gin.Context) {
	entries, err := c.connectionService.ListIncoming(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewConnectionResponses(entries, false))
}

// Outgoing returns pending requests the caller sent
// @Summary List sent requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ConnectionResponse
// @Router /connections/sent [get]
func (c *ConnectionController) Outgoing(ctx *gin.Context) {
	entries, err := c.connectionService.ListOutgoing(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewConnectionResponses(entries, false))
}

// Request sends a connection request to another user
// @Summary Send connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Receiver user ID"
// @Success 201 {object} dto.ConnectionRequestResponse
// @Failure 400 {object} dto.ErrorResponse "Self request or connection already exists"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /connections/{userId} [post]
func (c *ConnectionController) Request(ctx *gin.Context) {
	receiverID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	conn, err := c.connectionService.Request(ctx.Request.Context(), currentUserID(ctx), receiverID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ConnectionRequestResponse{
		ID:      conn.ID,
		Status:  conn.Status,
		Message: "Connection request sent",
	})
}

// Accept accepts a pending request addressed to the caller
// @Summary Accept connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} dto.ConnectionActionResponse
// @Failure 400 {object} dto.ErrorResponse "Already accepted"
// @Failure 403 {object} dto.ErrorResponse "Not the receiver"
// @Router /connections/{id}/accept [put]
func (c *ConnectionController) Accept(ctx *gin.Context) {
	connectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	conn, err := c.connectionService.Accept(ctx.Request.Context(), connectionID, currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ConnectionActionResponse{Message: "Connection accepted", Status: conn.Status})
}

// Remove deletes a connection or request. Either party may remove it.
// @Summary Remove connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} dto.ConnectionActionResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /connections/{id} [delete]
func (c *ConnectionController) Remove(ctx *gin.Context) {
	connectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.connectionService.Remove(ctx.Request.Context(), connectionID, currentUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ConnectionActionResponse{Message: "Connection removed"})
}

// Status reports the caller's relation to another user
// @Summary Connection status
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.ConnectionStatusResponse
// @Router /connections/status/{userId} [get]
func (c *ConnectionController) Status(ctx *gin.Context) {
	otherID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status, connectionID, err := c.connectionService.StatusBetween(ctx.Request.Context(), currentUserID(ctx), otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ConnectionStatusResponse{Status: status, ConnectionID: connectionID})
}
