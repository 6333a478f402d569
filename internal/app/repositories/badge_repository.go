package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
)

// BadgeRepository handles database operations for the badge catalog and awards
type BadgeRepository struct {
	db *pgxpool.Pool
}

// NewBadgeRepository creates a new BadgeRepository
func NewBadgeRepository(db *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// List returns the catalog ordered by id
func (r *BadgeRepository) List(ctx context.Context) ([]*models.Badge, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, icon FROM badges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	badges := make([]*models.Badge, 0)
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon); err != nil {
			return nil, fmt.Errorf("error scanning badge row: %w", err)
		}
		badges = append(badges, &b)
	}

	return badges, rows.Err()
}

// GetByName retrieves a catalog badge by its unique name
func (r *BadgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	var b models.Badge
	err := r.db.QueryRow(ctx, `SELECT id, name, description, icon FROM badges WHERE name = $1`, name).
		Scan(&b.ID, &b.Name, &b.Description, &b.Icon)
	if err != nil {
		return nil, notFoundOr(err, "error retrieving badge")
	}
	return &b, nil
}

// ListForUser returns the badges held by userID, most recent first
func (r *BadgeRepository) ListForUser(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.name, b.description, b.icon, ub.user_id, ub.workshop_id, w.title, ub.awarded_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		LEFT JOIN workshops w ON w.id = ub.workshop_id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at DESC, ub.id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	badges := make([]*models.UserBadge, 0)
	for rows.Next() {
		var ub models.UserBadge
		err := rows.Scan(&ub.ID, &ub.Name, &ub.Description, &ub.Icon,
			&ub.UserID, &ub.WorkshopID, &ub.WorkshopTitle, &ub.AwardedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning user badge row: %w", err)
		}
		badges = append(badges, &ub)
	}

	return badges, rows.Err()
}

// Award grants a badge. It reports false when the same award already exists.
func (r *BadgeRepository) Award(ctx context.Context, userID, badgeID int64, workshopID *int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id, workshop_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		userID, badgeID, workshopID)
	if err != nil {
		return false, fmt.Errorf("error awarding badge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// EnsureCatalog inserts any missing catalog entries by name
func (r *BadgeRepository) EnsureCatalog(ctx context.Context, badges []models.Badge) (int64, error) {
	var inserted int64
	for _, b := range badges {
		tag, err := r.db.Exec(ctx, `
			INSERT INTO badges (name, description, icon)
			VALUES ($1, $2, $3)
			ON CONFLICT ON CONSTRAINT badges_name_key DO NOTHING`,
			b.Name, b.Description, b.Icon)
		if err != nil {
			return inserted, fmt.Errorf("error seeding badge %q: %w", b.Name, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}
