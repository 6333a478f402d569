package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

// Outcomes reported by repositories. Services translate them into
// client-facing errors.
var (
	ErrNotFound       = apperrors.ErrResourceNotFound
	ErrDuplicate      = errors.New("duplicate row")
	ErrStaleState     = errors.New("row is no longer in the expected state")
	ErrWorkshopClosed = errors.New("workshop does not accept this operation in its current status")
	ErrWorkshopFull   = errors.New("workshop is full")
	ErrAlreadyJoined  = errors.New("user already joined the workshop")
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	ConnectionRepository *ConnectionRepository
	MessageRepository    *MessageRepository
	WorkshopRepository   *WorkshopRepository
	BadgeRepository      *BadgeRepository
	PostRepository       *PostRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		ConnectionRepository: NewConnectionRepository(db),
		MessageRepository:    NewMessageRepository(db),
		WorkshopRepository:   NewWorkshopRepository(db),
		BadgeRepository:      NewBadgeRepository(db),
		PostRepository:       NewPostRepository(db),
	}
}

// userSummaryColumns selects the public profile of the users row aliased as alias
func userSummaryColumns(alias string) []string {
	return []string{
		alias + ".id", alias + ".name", alias + ".branch", alias + ".year", alias + ".profile_photo",
	}
}

func summaryDest(u *models.UserSummary) []any {
	return []any{&u.ID, &u.Name, &u.Branch, &u.Year, &u.ProfilePhoto}
}

func notFoundOr(err error, wrap string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", wrap, err)
}
