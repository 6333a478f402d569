package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// PresenceService tracks who is online. Clients poll it.
type PresenceService interface {
	Heartbeat(ctx context.Context, userID int64) error
	Offline(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*models.Presence, error)
	Connections(ctx context.Context, userID int64) ([]*models.Presence, error)
}

type presenceServiceImpl struct {
	users  UserStore
	logger zerolog.Logger
}

// NewPresenceService creates a new PresenceService
func NewPresenceService(users UserStore, logger zerolog.Logger) PresenceService {
	return &presenceServiceImpl{users: users, logger: logger}
}

func (s *presenceServiceImpl) Heartbeat(ctx context.Context, userID int64) error {
	return s.set(ctx, userID, true)
}

func (s *presenceServiceImpl) Offline(ctx context.Context, userID int64) error {
	return s.set(ctx, userID, false)
}

func (s *presenceServiceImpl) set(ctx context.Context, userID int64, online bool) error {
	if err := s.users.SetPresence(ctx, userID, online); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewResourceNotFoundError("User not found")
		}
		return fmt.Errorf("error updating presence: %w", err)
	}
	return nil
}

func (s *presenceServiceImpl) Get(ctx context.Context, userID int64) (*models.Presence, error) {
	presence, err := s.users.GetPresence(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error retrieving presence: %w", err)
	}
	return presence, nil
}

// Connections returns the presence of every accepted connection of userID
func (s *presenceServiceImpl) Connections(ctx context.Context, userID int64) ([]*models.Presence, error) {
	presence, err := s.users.ListConnectionPresence(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving connection presence: %w", err)
	}
	return presence, nil
}
