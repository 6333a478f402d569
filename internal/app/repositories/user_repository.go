package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/dberrors"
)

const userColumns = `id, name, email, password, branch, year, bio, profile_photo, is_verified,
	verification_token, profile_completed, is_online, last_seen, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Branch, &u.Year, &u.Bio, &u.ProfilePhoto,
		&u.IsVerified, &u.VerificationToken, &u.ProfileCompleted, &u.IsOnline, &u.LastSeen, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and fills in its id and creation time
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		user.Name, user.Email, user.Password, user.IsVerified, user.VerificationToken,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "error retrieving user")
	}
	return user, nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFoundOr(err, "error retrieving user by email")
	}
	return user, nil
}

// GetByVerificationToken retrieves the user holding an email verification token
func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
	if err != nil {
		return nil, notFoundOr(err, "error retrieving user by verification token")
	}
	return user, nil
}

// MarkVerified flags the user as verified and consumes the token
func (r *UserRepository) MarkVerified(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL
		WHERE id = $1`,
		userID)
	if err != nil {
		return fmt.Errorf("error verifying user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile stores the editable profile fields and the completion flag
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, branch = $2, year = $3, bio = $4, profile_completed = $5
		WHERE id = $6`,
		user.Name, user.Branch, user.Year, user.Bio, user.ProfileCompleted, user.ID)
	if err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfilePhoto replaces the photo path and returns the previous one
func (r *UserRepository) UpdateProfilePhoto(ctx context.Context, userID int64, path string) (*string, error) {
	var previous *string
	err := r.db.QueryRow(ctx, `
		UPDATE users u
		SET profile_photo = $1
		FROM (SELECT id, profile_photo FROM users WHERE id = $2 FOR UPDATE) old
		WHERE u.id = old.id
		RETURNING old.profile_photo`,
		path, userID,
	).Scan(&previous)
	if err != nil {
		return nil, notFoundOr(err, "error updating profile photo")
	}
	return previous, nil
}

// Search finds verified users whose name or branch contains term
func (r *UserRepository) Search(ctx context.Context, term string, excludeID int64, limit uint64) ([]*models.User, error) {
	pattern := "%" + term + "%"
	query := squirrel.Select("id", "name", "branch", "year", "bio", "profile_photo").
		From("users").
		Where(squirrel.NotEq{"id": excludeID}).
		Where(squirrel.Eq{"is_verified": true}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"branch": pattern},
		}).
		OrderBy("name ASC", "id ASC").
		Limit(limit).
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

	users := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Branch, &u.Year, &u.Bio, &u.ProfilePhoto); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

// SetPresence records the online flag and bumps last_seen
func (r *UserRepository) SetPresence(ctx context.Context, userID int64, online bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_online = $1, last_seen = NOW()
		WHERE id = $2`,
		online, userID)
	if err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	return nil
}

// GetPresence returns the online state of a user
func (r *UserRepository) GetPresence(ctx context.Context, userID int64) (*models.Presence, error) {
	p := models.Presence{UserID: userID}
	err := r.db.QueryRow(ctx, `SELECT is_online, last_seen FROM users WHERE id = $1`, userID).
		Scan(&p.IsOnline, &p.LastSeen)
	if err != nil {
		return nil, notFoundOr(err, "error retrieving presence")
	}
	return &p, nil
}

// ListConnectionPresence returns the online state of every accepted connection of userID
func (r *UserRepository) ListConnectionPresence(ctx context.Context, userID int64) ([]*models.Presence, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.is_online, u.last_seen
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.requester_id = $1 THEN c.receiver_id ELSE c.requester_id END
		WHERE (c.requester_id = $1 OR c.receiver_id = $1) AND c.status = 'accepted'`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	presence := make([]*models.Presence, 0)
	for rows.Next() {
		var p models.Presence
		if err := rows.Scan(&p.UserID, &p.IsOnline, &p.LastSeen); err != nil {
			return nil, fmt.Errorf("error scanning presence row: %w", err)
		}
		presence = append(presence, &p)
	}

	return presence, rows.Err()
}
