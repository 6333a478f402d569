package auth

import (
	"context"
	"fmt"

	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/logger"
)

// ParticipantChecker answers roster membership questions
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, workshopID, userID int64) (bool, error)
}

// WorkshopRole is how a user relates to a workshop
type WorkshopRole int

const (
	RoleOutsider WorkshopRole = iota
	RoleParticipant
	RoleInstructor
)

// IsMember reports whether the role may see and use the workshop chat
func (r WorkshopRole) IsMember() bool {
	return r == RoleParticipant || r == RoleInstructor
}

// AuthorizationService handles authorization decisions that depend on
// ownership or membership rather than on the caller's identity alone
type AuthorizationService struct {
	participants ParticipantChecker
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(participants ParticipantChecker) *AuthorizationService {
	return &AuthorizationService{participants: participants}
}

// WorkshopRoleOf resolves the role of userID in w. The instructor is never
// looked up in the roster.
func (s *AuthorizationService) WorkshopRoleOf(ctx context.Context, w *models.Workshop, userID int64) (WorkshopRole, error) {
	if w.IsInstructor(userID) {
		return RoleInstructor, nil
	}

	joined, err := s.participants.IsParticipant(ctx, w.ID, userID)
	if err != nil {
		logger.Error().Err(err).
			Int64("workshopID", w.ID).
			Int64("userID", userID).
			Msg("Error checking workshop participant")
		return RoleOutsider, fmt.Errorf("error checking participant status: %w", err)
	}
	if joined {
		return RoleParticipant, nil
	}

	return RoleOutsider, nil
}

// ValidateWorkshopMember returns the caller's role or a permission error
// when the caller is neither the instructor nor a participant
func (s *AuthorizationService) ValidateWorkshopMember(ctx context.Context, w *models.Workshop, userID int64) (WorkshopRole, error) {
	role, err := s.WorkshopRoleOf(ctx, w, userID)
	if err != nil {
		return role, err
	}
	if !role.IsMember() {
		return role, apperrors.NewForbiddenError("Only the instructor and participants can access this workshop chat")
	}
	return role, nil
}

// ValidateInstructor returns a permission error unless userID runs w
func (s *AuthorizationService) ValidateInstructor(w *models.Workshop, userID int64, action string) error {
	if !w.IsInstructor(userID) {
		return apperrors.NewForbiddenError("Only the instructor can " + action + " this workshop")
	}
	return nil
}
