package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusconnect/internal/app/auth"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

// WorkshopChatHistoryLimit caps one page of workshop chat history
const WorkshopChatHistoryLimit = 200

// WorkshopChatService defines the interface for workshop chat operations
type WorkshopChatService interface {
	PostMessage(ctx context.Context, workshopID, userID int64, content string) (*models.WorkshopMessage, error)
	ListMessages(ctx context.Context, workshopID, userID, sinceID int64) ([]*models.WorkshopMessage, error)
	AuthorizeSubscription(ctx context.Context, workshopID, userID int64) error
}

// workshopChatServiceImpl implements WorkshopChatService
type workshopChatServiceImpl struct {
	workshops WorkshopStore
	authz     *appauth.AuthorizationService
	events    WorkshopEventPublisher
	logger    zerolog.Logger
}

// NewWorkshopChatService creates a new WorkshopChatService. events may be nil.
func NewWorkshopChatService(
	workshops WorkshopStore,
	authz *appauth.AuthorizationService,
	events WorkshopEventPublisher,
	logger zerolog.Logger,
) WorkshopChatService {
	return &workshopChatServiceImpl{
		workshops: workshops,
		authz:     authz,
		events:    events,
		logger:    logger,
	}
}

// PostMessage appends a chat line to a live workshop. Posting marks the
// author attended whenever they hold a roster seat.
func (s *workshopChatServiceImpl) PostMessage(ctx context.Context, workshopID, userID int64, content string) (*models.WorkshopMessage, error) {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return nil, err
	}

	content, ok := validation.CleanContent(content)
	if !ok {
		return nil, apperrors.NewValidationError("Message content is required")
	}

	if w.Status != models.WorkshopLive {
		return nil, apperrors.NewInvalidStateError("Chat is only available during live workshops")
	}

	role, err := s.authz.ValidateWorkshopMember(ctx, w, userID)
	if err != nil {
		return nil, err
	}

	// An instructor may also hold a roster seat
	attended := role == appauth.RoleParticipant
	if role == appauth.RoleInstructor {
		attended, err = s.workshops.IsParticipant(ctx, workshopID, userID)
		if err != nil {
			return nil, fmt.Errorf("error checking participant status: %w", err)
		}
	}

	msg, err := s.workshops.PostMessage(ctx, workshopID, userID, content, attended)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkshopClosed) {
			// ended between the check and the insert
			return nil, apperrors.NewInvalidStateError("Chat is only available during live workshops")
		}
		s.logger.Error().Err(err).
			Int64("workshopID", workshopID).
			Int64("userID", userID).
			Msg("Failed to post workshop message")
		return nil, fmt.Errorf("error posting workshop message: %w", err)
	}

	if s.events != nil {
		s.events.Publish(workshopID, EventWorkshopMessage, dto.NewWorkshopMessageResponse(msg))
	}

	return msg, nil
}

// ListMessages returns chat history oldest first. A positive sinceID returns
// only messages posted after it.
func (s *workshopChatServiceImpl) ListMessages(ctx context.Context, workshopID, userID, sinceID int64) ([]*models.WorkshopMessage, error) {
	if err := s.AuthorizeSubscription(ctx, workshopID, userID); err != nil {
		return nil, err
	}

	messages, err := s.workshops.ListMessages(ctx, workshopID, sinceID, WorkshopChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("error retrieving workshop messages: %w", err)
	}
	return messages, nil
}

// AuthorizeSubscription checks that userID may read the workshop chat
func (s *workshopChatServiceImpl) AuthorizeSubscription(ctx context.Context, workshopID, userID int64) error {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return err
	}

	_, err = s.authz.ValidateWorkshopMember(ctx, w, userID)
	return err
}
