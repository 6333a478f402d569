package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/services"
	"github.com/yigit/campusconnect/internal/middleware"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/filestorage"
	"github.com/yigit/campusconnect/internal/pkg/helpers"
)

// currentUserID returns the id Authenticate stored on the request
func currentUserID(ctx *gin.Context) int64 {
	return ctx.GetInt64(middleware.ContextUserID)
}

// optionalFile returns the uploaded file under field, or nil when none was sent
func optionalFile(ctx *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.NewValidationError("Invalid file upload")
	}
	if fh.Size > filestorage.MaxImageSize {
		return nil, apperrors.NewValidationError("File too large. Maximum size is 5MB")
	}
	return fh, nil
}

// UserController handles profile and user search endpoints
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the caller's own profile
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	user, err := c.userService.Me(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMeResponse(user))
}

// UpdateMe edits the caller's profile. Omitted fields are left unchanged.
// @Summary Update my profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.MeResponse
// @Failure 400 {object} dto.ErrorResponse "No fields or empty name"
// @Router /users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.UpdateMe(ctx.Request.Context(), currentUserID(ctx), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMeResponse(user))
}

// UploadPhoto replaces the caller's profile photo
// @Summary Upload profile photo
// @Description Accepts a JPEG or PNG image of at most 5MB in the "photo" form field.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "Profile photo"
// @Success 200 {object} dto.UpdateProfilePhotoResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/me/photo [post]
func (c *UserController) UploadPhoto(ctx *gin.Context) {
	file, err := optionalFile(ctx, "photo")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if file == nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("No file uploaded"))
		return
	}

	path, err := c.userService.UploadPhoto(ctx.Request.Context(), currentUserID(ctx), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UpdateProfilePhotoResponse{
		Message:      "Profile photo updated",
		ProfilePhoto: &path,
	})
}

// Search finds verified users by name or branch
// @Summary Search users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string true "At least 2 characters"
// @Success 200 {array} dto.UserSearchResult
// @Router /users/search [get]
func (c *UserController) Search(ctx *gin.Context) {
	users, err := c.userService.Search(ctx.Request.Context(), currentUserID(ctx), ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewUserSearchResults(users))
}

// GetProfile returns another user's public profile
// @Summary Get user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.PublicProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id} [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	profile, err := c.userService.Profile(ctx.Request.Context(), currentUserID(ctx), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPublicProfileResponse(profile))
}
