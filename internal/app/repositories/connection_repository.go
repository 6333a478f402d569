package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/dberrors"
)

// connectionsPairKey is the unique index allowing one row per unordered pair
const connectionsPairKey = "connections_pair_key"

// ConnectionRepository handles database operations for the connection graph
type ConnectionRepository struct {
	db *pgxpool.Pool
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var c models.Connection
	if err := row.Scan(&c.ID, &c.RequesterID, &c.ReceiverID, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a pending request. ErrDuplicate means a row already exists
// for the pair in either direction.
func (r *ConnectionRepository) Create(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error) {
	conn, err := scanConnection(r.db.QueryRow(ctx, `
		INSERT INTO connections (requester_id, receiver_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, requester_id, receiver_id, status, created_at`,
		requesterID, receiverID))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, connectionsPairKey) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("error creating connection: %w", err)
	}
	return conn, nil
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	conn, err := scanConnection(r.db.QueryRow(ctx, `
		SELECT id, requester_id, receiver_id, status, created_at
		FROM connections
		WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "error retrieving connection")
	}
	return conn, nil
}

// FindBetween returns the row for the pair regardless of direction
func (r *ConnectionRepository) FindBetween(ctx context.Context, userA, userB int64) (*models.Connection, error) {
	conn, err := scanConnection(r.db.QueryRow(ctx, `
		SELECT id, requester_id, receiver_id, status, created_at
		FROM connections
		WHERE (requester_id = $1 AND receiver_id = $2) OR (requester_id = $2 AND receiver_id = $1)`,
		userA, userB))
	if err != nil {
		return nil, notFoundOr(err, "error retrieving connection")
	}
	return conn, nil
}

// Accept flips a pending row to accepted. It reports false when the row was
// not pending anymore.
func (r *ConnectionRepository) Accept(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE connections
		SET status = 'accepted'
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, fmt.Errorf("error accepting connection: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete hard-deletes a connection row
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting connection: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AreConnected reports whether an accepted row exists for the pair
func (r *ConnectionRepository) AreConnected(ctx context.Context, userA, userB int64) (bool, error) {
	var connected bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE ((requester_id = $1 AND receiver_id = $2) OR (requester_id = $2 AND receiver_id = $1))
			AND status = 'accepted'
		)`, userA, userB).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("error checking connection: %w", err)
	}
	return connected, nil
}

// CountAccepted counts the accepted connections of userID
func (r *ConnectionRepository) CountAccepted(ctx context.Context, userID int64) (int, error) {
	query := squirrel.Select("COUNT(*)").
		From("connections").
		Where(squirrel.Or{squirrel.Eq{"requester_id": userID}, squirrel.Eq{"receiver_id": userID}}).
		Where(squirrel.Eq{"status": models.ConnectionAccepted}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// ListAccepted returns the accepted connections of userID, newest first
func (r *ConnectionRepository) ListAccepted(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	return r.list(ctx, userID, squirrel.And{
		squirrel.Or{squirrel.Eq{"c.requester_id": userID}, squirrel.Eq{"c.receiver_id": userID}},
		squirrel.Eq{"c.status": models.ConnectionAccepted},
	})
}

// ListIncoming returns pending requests received by userID, newest first
func (r *ConnectionRepository) ListIncoming(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	return r.list(ctx, userID, squirrel.Eq{"c.receiver_id": userID, "c.status": models.ConnectionPending})
}

// ListOutgoing returns pending requests sent by userID, newest first
func (r *ConnectionRepository) ListOutgoing(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error) {
	return r.list(ctx, userID, squirrel.Eq{"c.requester_id": userID, "c.status": models.ConnectionPending})
}

func (r *ConnectionRepository) list(ctx context.Context, userID int64, where squirrel.Sqlizer) ([]*models.ConnectionEntry, error) {
	columns := append([]string{"c.id", "c.requester_id", "c.receiver_id", "c.status", "c.created_at"},
		userSummaryColumns("u")...)

	query := squirrel.Select(columns...).
		From("connections c").
		JoinClause(squirrel.Expr(
			"JOIN users u ON u.id = CASE WHEN c.requester_id = ? THEN c.receiver_id ELSE c.requester_id END",
			userID)).
		Where(where).
		OrderBy("c.created_at DESC", "c.id DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ConnectionEntry, 0)
	for rows.Next() {
		var e models.ConnectionEntry
		dest := append([]any{&e.ID, &e.RequesterID, &e.ReceiverID, &e.Status, &e.CreatedAt}, summaryDest(&e.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning connection row: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
