package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

func TestAwardBadge(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	admin := env.state.addUser("Admin", true)
	u := env.state.addUser("Asha", true)

	require.NoError(t, env.badges.Award(ctx, admin.ID, u.ID, "Connector", nil))

	err := env.badges.Award(ctx, admin.ID, u.ID, "Connector", nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// the same badge may be held once per workshop
	wid := int64(42)
	require.NoError(t, env.badges.Award(ctx, admin.ID, u.ID, "Connector", &wid))

	held, err := env.badges.ForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, held, 2)
}

func TestAwardBadge_Rejections(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	admin := env.state.addUser("Admin", true)
	u := env.state.addUser("Asha", true)

	tests := []struct {
		name   string
		userID int64
		badge  string
		kind   error
	}{
		{"missing badge", u.ID, " ", apperrors.ErrValidationFailed},
		{"missing user id", 0, "Connector", apperrors.ErrValidationFailed},
		{"unknown user", 999999, "Connector", apperrors.ErrResourceNotFound},
		{"unknown badge", u.ID, "Astronaut", apperrors.ErrResourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.badges.Award(ctx, admin.ID, tt.userID, tt.badge, nil)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestListBadges(t *testing.T) {
	env := newTestEnv()

	badges, err := env.badges.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, badges, 2)
}
