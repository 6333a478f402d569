package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/campusconnect/internal/app/models"
)

// CatalogStore inserts badge catalog rows that do not exist yet
type CatalogStore interface {
	EnsureCatalog(ctx context.Context, badges []appModels.Badge) (int64, error)
}

func strPtr(s string) *string { return &s }

// DefaultBadges is the catalog every deployment starts with
func DefaultBadges() []appModels.Badge {
	return []appModels.Badge{
		{
			Name:        appModels.WorkshopAttendeeBadge,
			Description: strPtr("Attended a live workshop"),
			Icon:        strPtr("🎓"),
		},
		{
			Name:        "First Post",
			Description: strPtr("Shared a first post with the campus"),
			Icon:        strPtr("✍️"),
		},
		{
			Name:        "Connector",
			Description: strPtr("Built a network of classmates"),
			Icon:        strPtr("🤝"),
		},
		{
			Name:        "Workshop Host",
			Description: strPtr("Ran a workshop as instructor"),
			Icon:        strPtr("🎤"),
		},
	}
}

// CreateDefaultData makes sure the badge catalog exists. It is safe to run on
// every start.
func CreateDefaultData(ctx context.Context, badges CatalogStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (badge catalog)...")

	inserted, err := badges.EnsureCatalog(ctx, DefaultBadges())
	if err != nil {
		return fmt.Errorf("error seeding badge catalog: %w", err)
	}

	lgr.Info().Int64("inserted", inserted).Msg("Badge catalog ready")
	return nil
}
