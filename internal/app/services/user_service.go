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
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

// UserSearchLimit caps user search results
const UserSearchLimit = 20

// UserService defines the interface for user profile operations
type UserService interface {
	Me(ctx context.Context, userID int64) (*models.User, error)
	UpdateMe(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.User, error)
	UploadPhoto(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error)
	Search(ctx context.Context, userID int64, query string) ([]*models.User, error)
	Profile(ctx context.Context, viewerID, userID int64) (*models.UserProfile, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	users       UserStore
	connections ConnectionStore
	posts       PostStore
	storage     filestorage.FileStorage
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users UserStore,
	connections ConnectionStore,
	posts PostStore,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		users:       users,
		connections: connections,
		posts:       posts,
		storage:     storage,
		logger:      logger,
	}
}

func (s *userServiceImpl) getUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// Me returns the caller's own account
func (s *userServiceImpl) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.getUser(ctx, userID)
}

// UpdateMe applies a partial profile edit and recomputes profile completion
func (s *userServiceImpl) UpdateMe(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return nil, apperrors.NewValidationError("No fields to update")
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Name cannot be empty")
		}
		if len(name) > validation.NameMaxLength {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Name must be at most %d characters", validation.NameMaxLength))
		}
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	update.ApplyTo(user)
	// completion is one way; later edits never clear it
	user.ProfileCompleted = user.ProfileCompleted || user.HasCompleteProfile()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to update profile")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	s.logger.Info().
		Int64("userID", userID).
		Bool("profileCompleted", user.ProfileCompleted).
		Msg("Profile updated")

	return user, nil
}

// UploadPhoto stores a new profile photo and removes the previous file
func (s *userServiceImpl) UploadPhoto(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperrors.NewValidationError("No file uploaded")
	}

	path, err := s.storage.SaveImage(file, filestorage.DirProfiles)
	if err != nil {
		return "", uploadError(err)
	}

	previous, err := s.users.UpdateProfilePhoto(ctx, userID, path)
	if err != nil {
		_ = s.storage.DeleteFile(path)
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperrors.NewResourceNotFoundError("User not found")
		}
		return "", fmt.Errorf("error updating profile photo: %w", err)
	}

	if previous != nil && *previous != "" {
		if err := s.storage.DeleteFile(*previous); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete previous profile photo")
		}
	}

	return path, nil
}

// uploadError maps storage rejections to validation errors
func uploadError(err error) error {
	switch {
	case errors.Is(err, filestorage.ErrFileTooLarge):
		return apperrors.NewValidationError("File too large. Maximum size is 5MB")
	case errors.Is(err, filestorage.ErrUnsupportedImage):
		return apperrors.NewValidationError("Only JPEG and PNG images are allowed")
	default:
		return fmt.Errorf("error saving upload: %w", err)
	}
}

// Search finds verified users by name or branch, excluding the caller
func (s *userServiceImpl) Search(ctx context.Context, userID int64, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < validation.MinSearchLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Search query must be at least %d characters", validation.MinSearchLength))
	}

	users, err := s.users.Search(ctx, query, userID, UserSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	return users, nil
}

// Profile returns another user's public profile with the viewer's relation to them
func (s *userServiceImpl) Profile(ctx context.Context, viewerID, userID int64) (*models.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		User:         user,
		Relation:     models.RelationSelf,
		IsOwnProfile: viewerID == userID,
	}

	if !profile.IsOwnProfile {
		profile.Relation = models.RelationNone
		conn, err := s.connections.FindBetween(ctx, viewerID, userID)
		switch {
		case err == nil:
			id := conn.ID
			profile.ConnectionID = &id
			profile.Relation = conn.RelationFor(viewerID)
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("error retrieving connection status: %w", err)
		}
	}

	if profile.PostCount, err = s.posts.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("error counting posts: %w", err)
	}
	if profile.ConnectionCount, err = s.connections.CountAccepted(ctx, userID); err != nil {
		return nil, fmt.Errorf("error counting connections: %w", err)
	}

	return profile, nil
}
