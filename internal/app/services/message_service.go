package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

// MessageService defines the interface for direct messaging. Every operation
// checks for an accepted connection at call time.
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	ListThreads(ctx context.Context, userID int64) ([]*models.Thread, error)
	Conversation(ctx context.Context, userID, otherID int64) (*models.User, []*models.Message, error)
	MarkRead(ctx context.Context, userID, otherID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messages    MessageStore
	connections ConnectionStore
	users       UserStore
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(messages MessageStore, connections ConnectionStore, users UserStore, logger zerolog.Logger) MessageService {
	return &messageServiceImpl{
		messages:    messages,
		connections: connections,
		users:       users,
		logger:      logger,
	}
}

// requireConnected is the messaging gate
func (s *messageServiceImpl) requireConnected(ctx context.Context, userID, otherID int64) error {
	connected, err := s.connections.AreConnected(ctx, userID, otherID)
	if err != nil {
		return fmt.Errorf("error checking connection: %w", err)
	}
	if !connected {
		s.logger.Debug().
			Int64("userID", userID).
			Int64("otherID", otherID).
			Msg("Messaging rejected, users are not connected")
		return apperrors.ErrNotConnected
	}
	return nil
}

// Send stores a direct message from senderID to receiverID
func (s *messageServiceImpl) Send(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	content, ok := validation.CleanContent(content)
	if !ok {
		return nil, apperrors.NewValidationError("Message content is required")
	}
	if senderID == receiverID {
		return nil, apperrors.NewValidationError("Cannot send a message to yourself")
	}

	if err := s.requireConnected(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		s.logger.Error().Err(err).
			Int64("senderID", senderID).
			Int64("receiverID", receiverID).
			Msg("Failed to store message")
		return nil, fmt.Errorf("error sending message: %w", err)
	}

	return message, nil
}

// ListThreads returns one thread per accepted connection, most recent
// conversation first. Threads without messages come last; ties are broken by
// counterpart id.
func (s *messageServiceImpl) ListThreads(ctx context.Context, userID int64) ([]*models.Thread, error) {
	threads, err := s.messages.ListThreads(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing threads: %w", err)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		a, b := threads[i], threads[j]
		switch {
		case a.LastMessage == nil && b.LastMessage == nil:
			return a.User.ID < b.User.ID
		case a.LastMessage == nil:
			return false
		case b.LastMessage == nil:
			return true
		case !a.LastMessage.CreatedAt.Equal(b.LastMessage.CreatedAt):
			return a.LastMessage.CreatedAt.After(b.LastMessage.CreatedAt)
		default:
			return a.User.ID < b.User.ID
		}
	})

	return threads, nil
}

// Conversation returns the counterpart and the full history, oldest first
func (s *messageServiceImpl) Conversation(ctx context.Context, userID, otherID int64) (*models.User, []*models.Message, error) {
	if err := s.requireConnected(ctx, userID, otherID); err != nil {
		return nil, nil, err
	}

	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, nil, fmt.Errorf("error retrieving user: %w", err)
	}

	messages, err := s.messages.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return other, messages, nil
}

// MarkRead marks the unread messages from otherID to userID as read
func (s *messageServiceImpl) MarkRead(ctx context.Context, userID, otherID int64) (int64, error) {
	if err := s.requireConnected(ctx, userID, otherID); err != nil {
		return 0, err
	}

	updated, err := s.messages.MarkRead(ctx, userID, otherID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}

	return updated, nil
}

// UnreadCount counts unread messages to userID from current connections
func (s *messageServiceImpl) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.messages.CountUnreadFromConnections(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return count, nil
}
