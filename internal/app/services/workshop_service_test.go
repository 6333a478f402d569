package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"golang.org/x/sync/errgroup"
)

func TestCreateWorkshop(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	at := time.Date(2025, 5, 2, 15, 0, 0, 0, time.UTC)
	blank := "   "

	w, err := env.workshops.Create(ctx, host.ID, models.WorkshopDraft{Title: " Go ", ScheduledAt: &at, Description: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Go", w.Title)
	assert.Equal(t, models.WorkshopScheduled, w.Status)
	assert.Equal(t, DefaultWorkshopDuration, w.Duration)
	assert.Equal(t, DefaultWorkshopMaxParticipants, w.MaxParticipants)
	assert.Nil(t, w.Description)
	assert.Equal(t, host.ID, w.Instructor.ID)

	tests := []struct {
		name  string
		draft models.WorkshopDraft
	}{
		{"missing title", models.WorkshopDraft{ScheduledAt: &at}},
		{"missing time", models.WorkshopDraft{Title: "Go"}},
		{"negative duration", models.WorkshopDraft{Title: "Go", ScheduledAt: &at, Duration: -5}},
		{"negative capacity", models.WorkshopDraft{Title: "Go", ScheduledAt: &at, MaxParticipants: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.workshops.Create(ctx, host.ID, tt.draft)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestWorkshopLifecycle_AttendeeBadgeOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	p2 := env.state.addUser("Bilal", true)
	w := env.newWorkshop(t, host.ID, 10)

	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))
	require.NoError(t, env.workshops.Join(ctx, w.ID, p2.ID))

	_, err := env.workshops.End(ctx, w.ID, host.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState, "scheduled workshops cannot end")

	err = env.workshops.Start(ctx, w.ID, p1.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))
	assert.ErrorIs(t, env.workshops.Start(ctx, w.ID, host.ID), apperrors.ErrInvalidState)

	_, err = env.workshops.End(ctx, w.ID, p2.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	awarded, err := env.workshops.End(ctx, w.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), awarded)

	detail, err := env.workshops.Get(ctx, w.ID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkshopCompleted, detail.Status)
	assert.True(t, detail.UserJoined)
	for _, p := range detail.Participants {
		assert.True(t, p.Attended)
	}

	_, err = env.workshops.End(ctx, w.ID, host.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	held, err := env.badges.ForUser(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, models.WorkshopAttendeeBadge, held[0].Name)
	require.NotNil(t, held[0].WorkshopID)
	assert.Equal(t, w.ID, *held[0].WorkshopID)

	assert.Equal(t, 2, env.publisher.count(EventWorkshopStatus))
}

func TestJoinWorkshop_Rejections(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	p2 := env.state.addUser("Bilal", true)
	w := env.newWorkshop(t, host.ID, 1)

	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))

	err := env.workshops.Join(ctx, w.ID, p2.ID)
	assert.ErrorIs(t, err, apperrors.ErrCapacity)
	assert.Equal(t, apperrors.CodeWorkshopFull, apperrors.CodeOf(err))

	err = env.workshops.Join(ctx, 31337, p2.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))
	_, err = env.workshops.End(ctx, w.ID, host.ID)
	require.NoError(t, err)

	err = env.workshops.Join(ctx, w.ID, p2.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestJoinWorkshop_AlreadyJoined(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	w := env.newWorkshop(t, host.ID, 5)

	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))
	err := env.workshops.Join(ctx, w.ID, p1.ID)
	assert.Equal(t, apperrors.CodeAlreadyJoined, apperrors.CodeOf(err))
}

func TestJoinWorkshop_ConcurrentJoinsRespectCapacity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	w := env.newWorkshop(t, host.ID, 3)

	users := make([]*models.User, 10)
	for i := range users {
		users[i] = env.state.addUser("Student", true)
	}

	var joined, full int32
	var g errgroup.Group
	for _, u := range users {
		u := u
		g.Go(func() error {
			err := env.workshops.Join(ctx, w.ID, u.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&joined, 1)
			case errors.Is(err, apperrors.ErrCapacity):
				atomic.AddInt32(&full, 1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(3), joined)
	assert.Equal(t, int32(7), full)

	detail, err := env.workshops.Get(ctx, w.ID, host.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Participants, 3)
	assert.True(t, detail.IsInstructor)
}

func TestLeaveWorkshop(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	w := env.newWorkshop(t, host.ID, 5)

	err := env.workshops.Leave(ctx, w.ID, p1.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, apperrors.CodeNotParticipant, apperrors.CodeOf(err))

	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))
	require.NoError(t, env.workshops.Leave(ctx, w.ID, p1.ID))
	assert.Equal(t, [][2]int64{{w.ID, p1.ID}}, env.publisher.disconnected)

	// the instructor giving up a seat keeps their subscription
	require.NoError(t, env.workshops.Join(ctx, w.ID, host.ID))
	require.NoError(t, env.workshops.Leave(ctx, w.ID, host.ID))
	assert.Len(t, env.publisher.disconnected, 1)

	assert.ErrorIs(t, env.workshops.Leave(ctx, 999999, p1.ID), apperrors.ErrResourceNotFound)
}

func TestMarkAttendance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	outsider := env.state.addUser("Bilal", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))

	assert.ErrorIs(t, env.workshops.MarkAttendance(ctx, w.ID, p1.ID), apperrors.ErrInvalidState)

	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))
	require.NoError(t, env.workshops.MarkAttendance(ctx, w.ID, p1.ID))
	require.NoError(t, env.workshops.MarkAttendance(ctx, w.ID, outsider.ID))

	detail, err := env.workshops.Get(ctx, w.ID, outsider.ID)
	require.NoError(t, err)
	assert.False(t, detail.UserJoined)
	require.Len(t, detail.Participants, 1)
	assert.True(t, detail.Participants[0].Attended)
}

func TestListWorkshops_StatusFilter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	first := env.newWorkshop(t, host.ID, 5)
	env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Start(ctx, first.ID, host.ID))

	all, err := env.workshops.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	live, err := env.workshops.List(ctx, "live")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, first.ID, live[0].ID)

	_, err = env.workshops.List(ctx, "cancelled")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
