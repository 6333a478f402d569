package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusconnect/internal/app/auth"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

const (
	DefaultWorkshopDuration        = 60
	DefaultWorkshopMaxParticipants = 50
)

// Workshop push event types
const (
	EventWorkshopMessage = "message"
	EventWorkshopStatus  = "status"
)

// WorkshopEventPublisher pushes workshop events to live subscribers. It must
// not block the caller.
type WorkshopEventPublisher interface {
	Publish(workshopID int64, eventType string, payload interface{})

	// Disconnect ends userID's subscriptions to workshopID
	Disconnect(workshopID, userID int64)
}

// WorkshopService defines the interface for workshop lifecycle operations
type WorkshopService interface {
	Create(ctx context.Context, instructorID int64, draft models.WorkshopDraft) (*models.Workshop, error)
	Get(ctx context.Context, workshopID, viewerID int64) (*models.WorkshopDetail, error)
	List(ctx context.Context, status string) ([]*models.Workshop, error)
	Join(ctx context.Context, workshopID, userID int64) error
	Leave(ctx context.Context, workshopID, userID int64) error
	Start(ctx context.Context, workshopID, actingUserID int64) error
	End(ctx context.Context, workshopID, actingUserID int64) (int64, error)
	MarkAttendance(ctx context.Context, workshopID, userID int64) error
}

// workshopServiceImpl implements WorkshopService
type workshopServiceImpl struct {
	workshops WorkshopStore
	authz     *appauth.AuthorizationService
	events    WorkshopEventPublisher
	logger    zerolog.Logger
}

// NewWorkshopService creates a new WorkshopService. events may be nil.
func NewWorkshopService(
	workshops WorkshopStore,
	authz *appauth.AuthorizationService,
	events WorkshopEventPublisher,
	logger zerolog.Logger,
) WorkshopService {
	return &workshopServiceImpl{
		workshops: workshops,
		authz:     authz,
		events:    events,
		logger:    logger,
	}
}

func loadWorkshop(ctx context.Context, store WorkshopStore, workshopID int64) (*models.Workshop, error) {
	w, err := store.GetByID(ctx, workshopID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Workshop not found")
		}
		return nil, fmt.Errorf("error retrieving workshop: %w", err)
	}
	return w, nil
}

func errWorkshopNotLive() error {
	return apperrors.NewInvalidStateError("Workshop is not live")
}

// Create schedules a workshop run by instructorID
func (s *workshopServiceImpl) Create(ctx context.Context, instructorID int64, draft models.WorkshopDraft) (*models.Workshop, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Workshop title is required")
	}
	if draft.ScheduledAt == nil {
		return nil, apperrors.NewValidationError("Scheduled time is required")
	}

	duration := draft.Duration
	if duration == 0 {
		duration = DefaultWorkshopDuration
	}
	if duration < 0 {
		return nil, apperrors.NewValidationError("Duration must be positive")
	}

	maxParticipants := draft.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = DefaultWorkshopMaxParticipants
	}
	if maxParticipants < 0 {
		return nil, apperrors.NewValidationError("Max participants must be positive")
	}

	var description *string
	if draft.Description != nil {
		if d := strings.TrimSpace(*draft.Description); d != "" {
			description = &d
		}
	}

	w := &models.Workshop{
		Title:           title,
		Description:     description,
		InstructorID:    instructorID,
		ScheduledAt:     *draft.ScheduledAt,
		Duration:        duration,
		MaxParticipants: maxParticipants,
	}
	if err := s.workshops.Create(ctx, w); err != nil {
		s.logger.Error().Err(err).Int64("instructorID", instructorID).Msg("Failed to create workshop")
		return nil, fmt.Errorf("error creating workshop: %w", err)
	}

	s.logger.Info().
		Int64("workshopID", w.ID).
		Int64("instructorID", instructorID).
		Msg("Workshop created")

	return loadWorkshop(ctx, s.workshops, w.ID)
}

// Get returns a workshop with its roster as seen by viewerID
func (s *workshopServiceImpl) Get(ctx context.Context, workshopID, viewerID int64) (*models.WorkshopDetail, error) {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return nil, err
	}

	participants, err := s.workshops.ListParticipants(ctx, workshopID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving participants: %w", err)
	}

	detail := &models.WorkshopDetail{
		Workshop:     w,
		Participants: participants,
		IsInstructor: w.IsInstructor(viewerID),
	}
	for _, p := range participants {
		if p.UserID == viewerID {
			detail.UserJoined = true
			break
		}
	}

	return detail, nil
}

// List returns workshops by scheduled time; status filters when non-empty
func (s *workshopServiceImpl) List(ctx context.Context, status string) ([]*models.Workshop, error) {
	var filter *models.WorkshopStatus
	if status != "" {
		st := models.WorkshopStatus(status)
		if !st.Valid() {
			return nil, apperrors.NewValidationError("Invalid workshop status")
		}
		filter = &st
	}

	workshops, err := s.workshops.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing workshops: %w", err)
	}
	return workshops, nil
}

// Join adds userID to the roster while seats remain
func (s *workshopServiceImpl) Join(ctx context.Context, workshopID, userID int64) error {
	_, err := s.workshops.Join(ctx, workshopID, userID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NewResourceNotFoundError("Workshop not found")
	case errors.Is(err, repositories.ErrWorkshopClosed):
		return apperrors.NewInvalidStateError("Workshop has already ended")
	case errors.Is(err, repositories.ErrWorkshopFull):
		return apperrors.NewCapacityError("Workshop is full")
	case errors.Is(err, repositories.ErrAlreadyJoined):
		return apperrors.NewConflictError("Already joined this workshop").WithCode(apperrors.CodeAlreadyJoined)
	default:
		s.logger.Error().Err(err).
			Int64("workshopID", workshopID).
			Int64("userID", userID).
			Msg("Failed to join workshop")
		return fmt.Errorf("error joining workshop: %w", err)
	}

	s.logger.Info().
		Int64("workshopID", workshopID).
		Int64("userID", userID).
		Msg("User joined workshop")

	return nil
}

// Leave deletes userID's roster row, attended flag included, and closes
// their chat subscriptions unless they run the workshop.
func (s *workshopServiceImpl) Leave(ctx context.Context, workshopID, userID int64) error {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return err
	}

	removed, err := s.workshops.Leave(ctx, workshopID, userID)
	if err != nil {
		return fmt.Errorf("error leaving workshop: %w", err)
	}
	if !removed {
		return apperrors.NewValidationError("Not a participant of this workshop").WithCode(apperrors.CodeNotParticipant)
	}

	// the instructor keeps chat access without a roster seat
	if s.events != nil && !w.IsInstructor(userID) {
		s.events.Disconnect(workshopID, userID)
	}

	s.logger.Info().
		Int64("workshopID", workshopID).
		Int64("userID", userID).
		Msg("User left workshop")

	return nil
}

// Start moves a scheduled workshop to live. Only the instructor may start it.
func (s *workshopServiceImpl) Start(ctx context.Context, workshopID, actingUserID int64) error {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateInstructor(w, actingUserID, "start"); err != nil {
		return err
	}
	if w.Status != models.WorkshopScheduled {
		return apperrors.NewInvalidStateError("Only scheduled workshops can be started")
	}

	started, err := s.workshops.Transition(ctx, workshopID, models.WorkshopScheduled, models.WorkshopLive)
	if err != nil {
		return fmt.Errorf("error starting workshop: %w", err)
	}
	if !started {
		return apperrors.NewInvalidStateError("Only scheduled workshops can be started")
	}

	s.logger.Info().Int64("workshopID", workshopID).Msg("Workshop started")
	s.publishStatus(workshopID, models.WorkshopLive)

	return nil
}

// End completes a live workshop, marks every participant attended and awards
// the attendee badge. It returns how many badges were newly awarded.
func (s *workshopServiceImpl) End(ctx context.Context, workshopID, actingUserID int64) (int64, error) {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return 0, err
	}
	if err := s.authz.ValidateInstructor(w, actingUserID, "end"); err != nil {
		return 0, err
	}
	if w.Status != models.WorkshopLive {
		return 0, errWorkshopNotLive()
	}

	awarded, err := s.workshops.Complete(ctx, workshopID, models.WorkshopAttendeeBadge)
	if err != nil {
		if errors.Is(err, repositories.ErrStaleState) {
			return 0, errWorkshopNotLive()
		}
		s.logger.Error().Err(err).Int64("workshopID", workshopID).Msg("Failed to end workshop")
		return 0, fmt.Errorf("error ending workshop: %w", err)
	}

	s.logger.Info().
		Int64("workshopID", workshopID).
		Int64("badgesAwarded", awarded).
		Msg("Workshop ended")
	s.publishStatus(workshopID, models.WorkshopCompleted)

	return awarded, nil
}

// MarkAttendance flags the caller as attended while the workshop is live. It
// is a no-op for users who have not joined.
func (s *workshopServiceImpl) MarkAttendance(ctx context.Context, workshopID, userID int64) error {
	w, err := loadWorkshop(ctx, s.workshops, workshopID)
	if err != nil {
		return err
	}
	if w.Status != models.WorkshopLive {
		return errWorkshopNotLive()
	}

	marked, err := s.workshops.MarkAttended(ctx, workshopID, userID)
	if err != nil {
		return fmt.Errorf("error marking attendance: %w", err)
	}

	s.logger.Debug().
		Int64("workshopID", workshopID).
		Int64("userID", userID).
		Bool("marked", marked).
		Msg("Attendance requested")

	return nil
}

func (s *workshopServiceImpl) publishStatus(workshopID int64, status models.WorkshopStatus) {
	if s.events == nil {
		return
	}
	s.events.Publish(workshopID, EventWorkshopStatus, map[string]interface{}{
		"workshopId": workshopID,
		"status":     status,
	})
}
