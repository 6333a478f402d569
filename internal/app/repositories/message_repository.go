package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts an unread message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at`,
		message.SenderID, message.ReceiverID, message.Content,
	).Scan(&message.ID, &message.IsRead, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// ListThreads returns one entry per accepted connection of userID with the
// latest message between the two and the unread count from the counterpart.
// Ordering is left to the caller.
func (r *MessageRepository) ListThreads(ctx context.Context, userID int64) ([]*models.Thread, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.name, u.branch, u.year, u.profile_photo,
			lm.id, lm.sender_id, lm.receiver_id, lm.content, lm.is_read, lm.created_at,
			(SELECT COUNT(*) FROM messages um
				WHERE um.sender_id = u.id AND um.receiver_id = $1 AND NOT um.is_read)
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.requester_id = $1 THEN c.receiver_id ELSE c.requester_id END
		LEFT JOIN LATERAL (
			SELECT m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at
			FROM messages m
			WHERE (m.sender_id = $1 AND m.receiver_id = u.id) OR (m.sender_id = u.id AND m.receiver_id = $1)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON TRUE
		WHERE (c.requester_id = $1 OR c.receiver_id = $1) AND c.status = 'accepted'`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	threads := make([]*models.Thread, 0)
	for rows.Next() {
		var (
			t          models.Thread
			msgID      *int64
			senderID   *int64
			receiverID *int64
			content    *string
			isRead     *bool
			createdAt  *time.Time
		)
		dest := append(summaryDest(&t.User), &msgID, &senderID, &receiverID, &content, &isRead, &createdAt, &t.UnreadCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning thread row: %w", err)
		}
		if msgID != nil {
			t.LastMessage = &models.Message{
				ID:         *msgID,
				SenderID:   *senderID,
				ReceiverID: *receiverID,
				Content:    *content,
				IsRead:     *isRead,
				CreatedAt:  *createdAt,
			}
		}
		threads = append(threads, &t)
	}

	return threads, rows.Err()
}

// Conversation returns every message between two users, oldest first
func (r *MessageRepository) Conversation(ctx context.Context, userA, userB int64) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC`,
		userA, userB)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

// MarkRead marks every unread message from senderID to readerID as read
func (r *MessageRepository) MarkRead(ctx context.Context, readerID, senderID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read`,
		senderID, readerID)
	if err != nil {
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnreadFromConnections counts unread messages to userID whose sender is
// currently an accepted connection
func (r *MessageRepository) CountUnreadFromConnections(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		WHERE m.receiver_id = $1 AND NOT m.is_read
		AND EXISTS (
			SELECT 1 FROM connections c
			WHERE c.status = 'accepted'
			AND ((c.requester_id = m.sender_id AND c.receiver_id = $1)
				OR (c.requester_id = $1 AND c.receiver_id = m.sender_id))
		)`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return count, nil
}
