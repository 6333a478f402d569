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

// ConnectionService defines the interface for connection graph operations
type ConnectionService interface {
	Request(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error)
	Accept(ctx context.Context, connectionID, actingUserID int64) (*models.Connection, error)
	Remove(ctx context.Context, connectionID, actingUserID int64) error
	StatusBetween(ctx context.Context, userID, otherID int64) (models.RelationStatus, *int64, error)
	ListConnections(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error)
	ListIncoming(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error)
	ListOutgoing(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error)
}

// connectionServiceImpl implements ConnectionService
type connectionServiceImpl struct {
	connections ConnectionStore
	users       UserStore
	logger      zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(connections ConnectionStore, users UserStore, logger zerolog.Logger) ConnectionService {
	return &connectionServiceImpl{
		connections: connections,
		users:       users,
		logger:      logger,
	}
}

func errAlreadyConnected() error {
	return apperrors.NewConflictError("Already connected").WithCode(apperrors.CodeAlreadyConnected)
}

func errRequestPending() error {
	return apperrors.NewConflictError("Connection request already pending").WithCode(apperrors.CodeRequestPending)
}

// conflictFor describes an existing row for the pair
func conflictFor(existing *models.Connection) error {
	if existing.Status == models.ConnectionAccepted {
		return errAlreadyConnected()
	}
	return errRequestPending()
}

// Request sends a connection request from requesterID to receiverID
func (s *connectionServiceImpl) Request(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, apperrors.NewValidationError("Cannot send connection request to yourself")
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error retrieving receiver: %w", err)
	}
	if !receiver.IsVerified {
		return nil, apperrors.NewResourceNotFoundError("User not found")
	}

	existing, err := s.connections.FindBetween(ctx, requesterID, receiverID)
	switch {
	case err == nil:
		return nil, conflictFor(existing)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("error checking existing connection: %w", err)
	}

	conn, err := s.connections.Create(ctx, requesterID, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// lost a race with a concurrent request for the same pair
			if existing, findErr := s.connections.FindBetween(ctx, requesterID, receiverID); findErr == nil {
				return nil, conflictFor(existing)
			}
			return nil, errRequestPending()
		}
		s.logger.Error().Err(err).
			Int64("requesterID", requesterID).
			Int64("receiverID", receiverID).
			Msg("Failed to create connection request")
		return nil, fmt.Errorf("error creating connection: %w", err)
	}

	s.logger.Info().
		Int64("connectionID", conn.ID).
		Int64("requesterID", requesterID).
		Int64("receiverID", receiverID).
		Msg("Connection request sent")

	return conn, nil
}

// Accept turns a pending request into a connection. Only the receiver may accept.
func (s *connectionServiceImpl) Accept(ctx context.Context, connectionID, actingUserID int64) (*models.Connection, error) {
	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if conn.ReceiverID != actingUserID {
		return nil, apperrors.NewForbiddenError("You can only accept requests sent to you")
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperrors.NewInvalidStateError("Connection request is not pending")
	}

	accepted, err := s.connections.Accept(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("error accepting connection: %w", err)
	}
	if !accepted {
		return nil, apperrors.NewInvalidStateError("Connection request is not pending")
	}

	conn.Status = models.ConnectionAccepted

	s.logger.Info().
		Int64("connectionID", connectionID).
		Int64("userID", actingUserID).
		Msg("Connection accepted")

	return conn, nil
}

// Remove rejects, cancels or dissolves a connection. Either party may remove it.
func (s *connectionServiceImpl) Remove(ctx context.Context, connectionID, actingUserID int64) error {
	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		return err
	}

	if !conn.Involves(actingUserID) {
		return apperrors.NewForbiddenError("You can only remove your own connections")
	}

	deleted, err := s.connections.Delete(ctx, connectionID)
	if err != nil {
		return fmt.Errorf("error removing connection: %w", err)
	}
	if !deleted {
		return apperrors.NewResourceNotFoundError("Connection not found")
	}

	s.logger.Info().
		Int64("connectionID", connectionID).
		Int64("userID", actingUserID).
		Msg("Connection removed")

	return nil
}

// StatusBetween describes how userID relates to otherID
func (s *connectionServiceImpl) StatusBetween(ctx context.Context, userID, otherID int64) (models.RelationStatus, *int64, error) {
	if userID == otherID {
		return models.RelationSelf, nil, nil
	}

	conn, err := s.connections.FindBetween(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.RelationNone, nil, nil
		}
		return "", nil, fmt.Errorf("error retrieving connection status: %w", err)
	}

	id := conn.ID
	return conn.RelationFor(userID), &id, nil
}

// ListConnections returns the accepted connections of userID
func (s *connectionServiceImpl) ListConnections(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	entries, err := s.connections.ListAccepted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	return entries, nil
}

// ListIncoming returns pending requests sent to userID
func (s *connectionServiceImpl) ListIncoming(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	entries, err := s.connections.ListIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing connection requests: %w", err)
	}
	return entries, nil
}

// ListOutgoing returns pending requests sent by userID
func (s *connectionServiceImpl) ListOutgoing(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	entries, err := s.connections.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing sent requests: %w", err)
	}
	return entries, nil
}

func (s *connectionServiceImpl) getConnection(ctx context.Context, connectionID int64) (*models.Connection, error) {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Connection not found")
		}
		return nil, fmt.Errorf("error retrieving connection: %w", err)
	}
	return conn, nil
}
