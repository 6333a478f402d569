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

// PostController handles the feed, posts and their interactions
type PostController struct {
	postService services.PostService
	logger      zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService, logger zerolog.Logger) *PostController {
	return &PostController{
		postService: postService,
		logger:      logger,
	}
}

// Feed returns the newest posts, optionally only those tagged with a hashtag
// @Summary Get feed
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param hashtag query string false "Hashtag without #"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {array} dto.PostResponse
// @Router /posts [get]
func (c *PostController) Feed(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	userID := currentUserID(ctx)

	posts, err := c.postService.Feed(ctx.Request.Context(), userID, ctx.Query("hashtag"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPostResponses(posts, userID))
}

// ByUser returns one author's posts
// @Summary Get user posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Author ID"
// @Success 200 {array} dto.PostResponse
// @Router /posts/user/{userId} [get]
func (c *PostController) ByUser(ctx *gin.Context) {
	authorID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	userID := currentUserID(ctx)
	posts, err := c.postService.ByUser(ctx.Request.Context(), userID, authorID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPostResponses(posts, userID))
}

// Create publishes a post. The body is JSON or a multipart form with an optional image.
// @Summary Create post
// @Tags posts
// @Accept json,multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param content formData string true "Post text"
// @Param image formData file false "JPEG or PNG up to 5MB"
// @Success 201 {object} dto.PostResponse
// @Failure 400 {object} dto.ErrorResponse "Empty content or unsupported image"
// @Router /posts [post]
func (c *PostController) Create(ctx *gin.Context) {
	var req dto.CreatePostRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	image, err := optionalFile(ctx, "image")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	userID := currentUserID(ctx)
	post, err := c.postService.Create(ctx.Request.Context(), userID, req.Content, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewPostResponse(post, userID))
}

// Get returns a post with its comments
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.PostDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [get]
func (c *PostController) Get(ctx *gin.Context) {
	postID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	userID := currentUserID(ctx)
	detail, err := c.postService.Get(ctx.Request.Context(), postID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPostDetailResponse(detail, userID))
}

// Delete removes the caller's own post
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Router /posts/{id} [delete]
func (c *PostController) Delete(ctx *gin.Context) {
	postID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.postService.Delete(ctx.Request.Context(), postID, currentUserID(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Post deleted successfully"})
}

// Like likes a post once; a second like is a conflict
// @Summary Like post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Router /posts/{id}/like [post]
func (c *PostController) Like(ctx *gin.Context) {
	postID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	count, err := c.postService.Like(ctx.Request.Context(), postID, currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.LikeResponse{Message: "Post liked", LikeCount: count, UserLiked: true})
}

// Unlike removes the caller's like
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Router /posts/{id}/like [delete]
func (c *PostController) Unlike(ctx *gin.Context) {
	postID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	count, err := c.postService.Unlike(ctx.Request.Context(), postID, currentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.LikeResponse{Message: "Like removed", LikeCount: count, UserLiked: false})
}

// Comment adds a comment to a post
// @Summary Comment on post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CommentRequest true "Comment"
// @Success 201 {object} dto.CommentCreatedResponse
// @Router /posts/{id}/comments [post]
func (c *PostController) Comment(ctx *gin.Context) {
	postID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	userID := currentUserID(ctx)
	comment, count, err := c.postService.Comment(ctx.Request.Context(), postID, userID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.CommentCreatedResponse{
		Comment:      dto.NewCommentResponse(comment, userID),
		CommentCount: count,
	})
}

// Share reposts a post. Shares of shares point at the root post.
// @Summary Share post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.SharePostRequest false "Optional caption"
// @Success 201 {object} dto.ShareResponse
// @Router /posts/{id}/share [post]
func (c *PostController) Share(ctx *gin.Context) {
	postID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.SharePostRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(ctx, err)
			return
		}
	}

	userID := currentUserID(ctx)
	post, shareCount, err := c.postService.Share(ctx.Request.Context(), postID, userID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.ShareResponse{
		PostResponse:       dto.NewPostResponse(post, userID),
		OriginalShareCount: shareCount,
	})
}
