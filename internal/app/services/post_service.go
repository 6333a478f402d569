package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/filestorage"
	"github.com/yigit/campusconnect/internal/pkg/helpers"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

const mediaTypeImage = "image"

// PostService defines the interface for feed operations
type PostService interface {
	Create(ctx context.Context, userID int64, content string, image *multipart.FileHeader) (*models.Post, error)
	Feed(ctx context.Context, viewerID int64, hashtag string, page, size int) ([]*models.Post, error)
	ByUser(ctx context.Context, viewerID, authorID int64, page, size int) ([]*models.Post, error)
	Get(ctx context.Context, postID, viewerID int64) (*models.PostDetail, error)
	Delete(ctx context.Context, postID, userID int64) error
	Like(ctx context.Context, postID, userID int64) (int, error)
	Unlike(ctx context.Context, postID, userID int64) (int, error)
	Comment(ctx context.Context, postID, userID int64, content string) (*models.Comment, int, error)
	Share(ctx context.Context, postID, userID int64, content string) (*models.Post, int, error)
}

type postServiceImpl struct {
	posts   PostStore
	storage filestorage.FileStorage
	logger  zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts PostStore, storage filestorage.FileStorage, logger zerolog.Logger) PostService {
	return &postServiceImpl{
		posts:   posts,
		storage: storage,
		logger:  logger,
	}
}

func (s *postServiceImpl) getPost(ctx context.Context, postID, viewerID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Post not found")
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return post, nil
}

// Create publishes a post with an optional image
func (s *postServiceImpl) Create(ctx context.Context, userID int64, content string, image *multipart.FileHeader) (*models.Post, error) {
	content, ok := validation.CleanContent(content)
	if !ok {
		return nil, apperrors.NewValidationError("Post content is required")
	}

	post := &models.Post{UserID: userID, Content: content}

	if image != nil {
		path, err := s.storage.SaveImage(image, filestorage.DirPosts)
		if err != nil {
			return nil, uploadError(err)
		}
		mediaType := mediaTypeImage
		post.Image = &path
		post.MediaType = &mediaType
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.Image != nil {
			_ = s.storage.DeleteFile(*post.Image)
		}
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to create post")
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Info().Int64("postID", post.ID).Int64("userID", userID).Msg("Post created")

	return s.getPost(ctx, post.ID, userID)
}

// Feed returns a page of posts, optionally only those carrying a hashtag
func (s *postServiceImpl) Feed(ctx context.Context, viewerID int64, hashtag string, page, size int) ([]*models.Post, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	posts, err := s.posts.List(ctx, models.PostFilter{
		ViewerID: viewerID,
		Hashtag:  validation.NormalizeHashtag(hashtag),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving feed: %w", err)
	}
	return posts, nil
}

// ByUser returns a page of posts written by authorID
func (s *postServiceImpl) ByUser(ctx context.Context, viewerID, authorID int64, page, size int) ([]*models.Post, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	posts, err := s.posts.List(ctx, models.PostFilter{
		ViewerID: viewerID,
		AuthorID: &authorID,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error retrieving user posts: %w", err)
	}
	return posts, nil
}

// Get returns a post with its comments
func (s *postServiceImpl) Get(ctx context.Context, postID, viewerID int64) (*models.PostDetail, error) {
	post, err := s.getPost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving comments: %w", err)
	}

	return &models.PostDetail{Post: *post, Comments: comments}, nil
}

// Delete removes one of the caller's own posts
func (s *postServiceImpl) Delete(ctx context.Context, postID, userID int64) error {
	post, err := s.getPost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return apperrors.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewResourceNotFoundError("Post not found")
		}
		return fmt.Errorf("error deleting post: %w", err)
	}

	if post.Image != nil {
		if err := s.storage.DeleteFile(*post.Image); err != nil {
			s.logger.Warn().Err(err).Int64("postID", postID).Msg("Failed to delete post image")
		}
	}

	s.logger.Info().Int64("postID", postID).Int64("userID", userID).Msg("Post deleted")
	return nil
}

// Like records the caller's like and returns the new like count
func (s *postServiceImpl) Like(ctx context.Context, postID, userID int64) (int, error) {
	if err := s.posts.Like(ctx, postID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return 0, apperrors.NewConflictError("You have already liked this post")
		case errors.Is(err, repositories.ErrNotFound):
			return 0, apperrors.NewResourceNotFoundError("Post not found")
		default:
			return 0, fmt.Errorf("error liking post: %w", err)
		}
	}

	return s.likeCount(ctx, postID)
}

// Unlike removes the caller's like and returns the new like count
func (s *postServiceImpl) Unlike(ctx context.Context, postID, userID int64) (int, error) {
	removed, err := s.posts.Unlike(ctx, postID, userID)
	if err != nil {
		return 0, fmt.Errorf("error unliking post: %w", err)
	}
	if !removed {
		return 0, apperrors.NewValidationError("You have not liked this post")
	}

	return s.likeCount(ctx, postID)
}

func (s *postServiceImpl) likeCount(ctx context.Context, postID int64) (int, error) {
	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("error counting likes: %w", err)
	}
	return count, nil
}

// Comment adds a comment and returns it with the post's new comment count
func (s *postServiceImpl) Comment(ctx context.Context, postID, userID int64, content string) (*models.Comment, int, error) {
	content, ok := validation.CleanContent(content)
	if !ok {
		return nil, 0, apperrors.NewValidationError("Comment content is required")
	}

	if _, err := s.getPost(ctx, postID, userID); err != nil {
		return nil, 0, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	count, err := s.posts.AddComment(ctx, comment)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, apperrors.NewResourceNotFoundError("Post not found")
		}
		return nil, 0, fmt.Errorf("error adding comment: %w", err)
	}

	return comment, count, nil
}

// Share reposts the root of postID. It returns the repost and the root's
// new share count.
func (s *postServiceImpl) Share(ctx context.Context, postID, userID int64, content string) (*models.Post, int, error) {
	post, err := s.getPost(ctx, postID, userID)
	if err != nil {
		return nil, 0, err
	}

	rootID := post.ID
	if post.OriginalPostID != nil {
		rootID = *post.OriginalPostID
	}

	repostID, shareCount, err := s.posts.Share(ctx, rootID, userID, strings.TrimSpace(content))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, apperrors.NewResourceNotFoundError("Post not found")
		}
		return nil, 0, fmt.Errorf("error sharing post: %w", err)
	}

	s.logger.Info().
		Int64("postID", rootID).
		Int64("repostID", repostID).
		Int64("userID", userID).
		Msg("Post shared")

	repost, err := s.getPost(ctx, repostID, userID)
	if err != nil {
		return nil, 0, err
	}
	return repost, shareCount, nil
}
