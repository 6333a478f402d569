package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// BadgeService defines the interface for the badge catalog and awards
type BadgeService interface {
	List(ctx context.Context) ([]*models.Badge, error)
	ForUser(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	Award(ctx context.Context, awardedBy, userID int64, badgeName string, workshopID *int64) error
}

type badgeServiceImpl struct {
	badges BadgeStore
	users  UserStore
	logger zerolog.Logger
}

// NewBadgeService creates a new BadgeService
func NewBadgeService(badges BadgeStore, users UserStore, logger zerolog.Logger) BadgeService {
	return &badgeServiceImpl{
		badges: badges,
		users:  users,
		logger: logger,
	}
}

func (s *badgeServiceImpl) List(ctx context.Context) ([]*models.Badge, error) {
	badges, err := s.badges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing badges: %w", err)
	}
	return badges, nil
}

// ForUser returns the badges held by userID, newest first
func (s *badgeServiceImpl) ForUser(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	badges, err := s.badges.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing user badges: %w", err)
	}
	return badges, nil
}

// Award grants a catalog badge to userID. A badge can be held once per workshop.
func (s *badgeServiceImpl) Award(ctx context.Context, awardedBy, userID int64, badgeName string, workshopID *int64) error {
	badgeName = strings.TrimSpace(badgeName)
	if userID <= 0 || badgeName == "" {
		return apperrors.NewValidationError("User ID and badge name are required")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewResourceNotFoundError("User not found")
		}
		return fmt.Errorf("error retrieving user: %w", err)
	}

	badge, err := s.badges.GetByName(ctx, badgeName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewResourceNotFoundError("Badge not found")
		}
		return fmt.Errorf("error retrieving badge: %w", err)
	}

	awarded, err := s.badges.Award(ctx, userID, badge.ID, workshopID)
	if err != nil {
		return fmt.Errorf("error awarding badge: %w", err)
	}
	if !awarded {
		return apperrors.NewConflictError("Badge already awarded")
	}

	s.logger.Info().
		Int64("userID", userID).
		Int64("awardedBy", awardedBy).
		Str("badge", badge.Name).
		Msg("Badge awarded")

	return nil
}
