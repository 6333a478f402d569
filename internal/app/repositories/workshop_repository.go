package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/db"
	"github.com/yigit/campusconnect/internal/pkg/dberrors"
)

const workshopParticipantsKey = "workshop_participants_workshop_user_key"

// WorkshopRepository handles database operations for workshops, their
// participants and their chat
type WorkshopRepository struct {
	db *pgxpool.Pool
}

// NewWorkshopRepository creates a new WorkshopRepository
func NewWorkshopRepository(db *pgxpool.Pool) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

func workshopSelect() squirrel.SelectBuilder {
	columns := append([]string{
		"w.id", "w.title", "w.description", "w.instructor_id", "w.scheduled_at", "w.duration",
		"w.max_participants", "w.status", "w.created_at",
		"(SELECT COUNT(*) FROM workshop_participants wp WHERE wp.workshop_id = w.id)",
	}, userSummaryColumns("u")...)

	return squirrel.Select(columns...).
		From("workshops w").
		Join("users u ON u.id = w.instructor_id").
		PlaceholderFormat(squirrel.Dollar)
}

func workshopDest(w *models.Workshop) []any {
	return append([]any{
		&w.ID, &w.Title, &w.Description, &w.InstructorID, &w.ScheduledAt, &w.Duration,
		&w.MaxParticipants, &w.Status, &w.CreatedAt, &w.ParticipantCount,
	}, summaryDest(&w.Instructor)...)
}

// Create inserts a scheduled workshop
func (r *WorkshopRepository) Create(ctx context.Context, w *models.Workshop) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO workshops (title, description, instructor_id, scheduled_at, duration, max_participants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at`,
		w.Title, w.Description, w.InstructorID, w.ScheduledAt, w.Duration, w.MaxParticipants,
	).Scan(&w.ID, &w.Status, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating workshop: %w", err)
	}
	return nil
}

// GetByID retrieves a workshop with its instructor and participant count
func (r *WorkshopRepository) GetByID(ctx context.Context, id int64) (*models.Workshop, error) {
	sql, args, err := workshopSelect().Where(squirrel.Eq{"w.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var w models.Workshop
	if err := r.db.QueryRow(ctx, sql, args...).Scan(workshopDest(&w)...); err != nil {
		return nil, notFoundOr(err, "error retrieving workshop")
	}
	return &w, nil
}

// List returns workshops by scheduled time, optionally filtered by status
func (r *WorkshopRepository) List(ctx context.Context, status *models.WorkshopStatus) ([]*models.Workshop, error) {
	query := workshopSelect().OrderBy("w.scheduled_at ASC", "w.id ASC")
	if status != nil {
		query = query.Where(squirrel.Eq{"w.status": *status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	workshops := make([]*models.Workshop, 0)
	for rows.Next() {
		var w models.Workshop
		if err := rows.Scan(workshopDest(&w)...); err != nil {
			return nil, fmt.Errorf("error scanning workshop row: %w", err)
		}
		workshops = append(workshops, &w)
	}

	return workshops, rows.Err()
}

// ListParticipants returns the roster of a workshop in join order
func (r *WorkshopRepository) ListParticipants(ctx context.Context, workshopID int64) ([]*models.WorkshopParticipant, error) {
	columns := append([]string{"wp.id", "wp.workshop_id", "wp.user_id", "wp.joined_at", "wp.attended"},
		userSummaryColumns("u")...)

	sql, args, err := squirrel.Select(columns...).
		From("workshop_participants wp").
		Join("users u ON u.id = wp.user_id").
		Where(squirrel.Eq{"wp.workshop_id": workshopID}).
		OrderBy("wp.joined_at ASC", "wp.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.WorkshopParticipant, 0)
	for rows.Next() {
		var p models.WorkshopParticipant
		dest := append([]any{&p.ID, &p.WorkshopID, &p.UserID, &p.JoinedAt, &p.Attended}, summaryDest(&p.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		participants = append(participants, &p)
	}

	return participants, rows.Err()
}

// IsParticipant checks if a user has joined a workshop
func (r *WorkshopRepository) IsParticipant(ctx context.Context, workshopID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM workshop_participants WHERE workshop_id = $1 AND user_id = $2)`,
		workshopID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking participant: %w", err)
	}
	return exists, nil
}

// Join adds userID to the roster. The workshop row is locked for the
// duration of the capacity check so concurrent joins are serialized.
func (r *WorkshopRepository) Join(ctx context.Context, workshopID, userID int64) (*models.WorkshopParticipant, error) {
	var participant *models.WorkshopParticipant

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var (
			status          models.WorkshopStatus
			maxParticipants int
		)
		err := tx.QueryRow(ctx,
			`SELECT status, max_participants FROM workshops WHERE id = $1 FOR UPDATE`, workshopID,
		).Scan(&status, &maxParticipants)
		if err != nil {
			return notFoundOr(err, "error locking workshop")
		}

		if status == models.WorkshopCompleted {
			return ErrWorkshopClosed
		}

		var count int
		var joined bool
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*), COALESCE(BOOL_OR(user_id = $2), FALSE)
			FROM workshop_participants
			WHERE workshop_id = $1`,
			workshopID, userID).Scan(&count, &joined)
		if err != nil {
			return fmt.Errorf("error counting participants: %w", err)
		}

		if count >= maxParticipants {
			return ErrWorkshopFull
		}
		if joined {
			return ErrAlreadyJoined
		}

		p := models.WorkshopParticipant{WorkshopID: workshopID, UserID: userID}
		err = tx.QueryRow(ctx, `
			INSERT INTO workshop_participants (workshop_id, user_id)
			VALUES ($1, $2)
			RETURNING id, joined_at, attended`,
			workshopID, userID).Scan(&p.ID, &p.JoinedAt, &p.Attended)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, workshopParticipantsKey) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("error adding participant: %w", err)
		}

		participant = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return participant, nil
}

// Leave removes userID from the roster and reports whether a row existed
func (r *WorkshopRepository) Leave(ctx context.Context, workshopID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM workshop_participants WHERE workshop_id = $1 AND user_id = $2`,
		workshopID, userID)
	if err != nil {
		return false, fmt.Errorf("error removing participant: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Transition moves a workshop from one status to another. It reports false
// when the workshop was not in the from status.
func (r *WorkshopRepository) Transition(ctx context.Context, workshopID int64, from, to models.WorkshopStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE workshops SET status = $1 WHERE id = $2 AND status = $3`,
		to, workshopID, from)
	if err != nil {
		return false, fmt.Errorf("error updating workshop status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Complete ends a live workshop in one transaction: the status flips to
// completed, every participant is marked attended and each receives the
// named badge once. It returns the number of badges newly awarded, and
// ErrStaleState when the workshop was not live.
func (r *WorkshopRepository) Complete(ctx context.Context, workshopID int64, badgeName string) (int64, error) {
	var awarded int64

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE workshops SET status = 'completed' WHERE id = $1 AND status = 'live'`, workshopID)
		if err != nil {
			return fmt.Errorf("error completing workshop: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStaleState
		}

		if _, err := tx.Exec(ctx, `
			UPDATE workshop_participants SET attended = TRUE WHERE workshop_id = $1`, workshopID); err != nil {
			return fmt.Errorf("error marking attendance: %w", err)
		}

		tag, err = tx.Exec(ctx, `
			INSERT INTO user_badges (user_id, badge_id, workshop_id)
			SELECT wp.user_id, b.id, wp.workshop_id
			FROM workshop_participants wp
			JOIN badges b ON b.name = $2
			WHERE wp.workshop_id = $1 AND wp.attended
			ON CONFLICT DO NOTHING`,
			workshopID, badgeName)
		if err != nil {
			return fmt.Errorf("error awarding badges: %w", err)
		}

		awarded = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return awarded, nil
}

// MarkAttended flags the participant row of userID while the workshop is
// live. It reports whether a row was updated.
func (r *WorkshopRepository) MarkAttended(ctx context.Context, workshopID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE workshop_participants wp
		SET attended = TRUE
		FROM workshops w
		WHERE w.id = wp.workshop_id AND w.status = 'live'
		AND wp.workshop_id = $1 AND wp.user_id = $2`,
		workshopID, userID)
	if err != nil {
		return false, fmt.Errorf("error marking attendance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// PostMessage appends a chat line while the workshop is live and, when
// markAttendance is set, flags the author as attended in the same
// transaction. ErrWorkshopClosed means the workshop was not live at insert time.
func (r *WorkshopRepository) PostMessage(ctx context.Context, workshopID, userID int64, content string, markAttendance bool) (*models.WorkshopMessage, error) {
	msg := models.WorkshopMessage{WorkshopID: workshopID, UserID: userID, Content: content}

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO workshop_messages (workshop_id, user_id, content)
			SELECT $1, $2, $3
			WHERE EXISTS (SELECT 1 FROM workshops WHERE id = $1 AND status = 'live')
			RETURNING id, created_at`,
			workshopID, userID, content).Scan(&msg.ID, &msg.CreatedAt)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return ErrWorkshopClosed
			}
			return fmt.Errorf("error creating workshop message: %w", err)
		}

		if markAttendance {
			if _, err := tx.Exec(ctx, `
				UPDATE workshop_participants SET attended = TRUE
				WHERE workshop_id = $1 AND user_id = $2`,
				workshopID, userID); err != nil {
				return fmt.Errorf("error marking attendance: %w", err)
			}
		}

		err = tx.QueryRow(ctx,
			`SELECT id, name, branch, year, profile_photo FROM users WHERE id = $1`, userID,
		).Scan(summaryDest(&msg.User)...)
		if err != nil {
			return fmt.Errorf("error loading message author: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// ListMessages returns chat lines with id greater than sinceID in id order
func (r *WorkshopRepository) ListMessages(ctx context.Context, workshopID, sinceID int64, limit uint64) ([]*models.WorkshopMessage, error) {
	columns := append([]string{"m.id", "m.workshop_id", "m.user_id", "m.content", "m.created_at"},
		userSummaryColumns("u")...)

	sql, args, err := squirrel.Select(columns...).
		From("workshop_messages m").
		Join("users u ON u.id = m.user_id").
		Where(squirrel.Eq{"m.workshop_id": workshopID}).
		Where(squirrel.Gt{"m.id": sinceID}).
		OrderBy("m.id ASC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.WorkshopMessage, 0)
	for rows.Next() {
		var m models.WorkshopMessage
		dest := append([]any{&m.ID, &m.WorkshopID, &m.UserID, &m.Content, &m.CreatedAt}, summaryDest(&m.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning workshop message row: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}
