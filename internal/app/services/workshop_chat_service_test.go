package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/campusconnect/internal/app/auth"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/websocket"
)

func TestWorkshopChat_OnlyWhileLive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))

	_, err := env.chat.PostMessage(ctx, w.ID, p1.ID, "too early")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	msg, err := env.chat.PostMessage(ctx, w.ID, p1.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, p1.ID, msg.User.ID)

	_, err = env.chat.PostMessage(ctx, w.ID, host.ID, "welcome")
	require.NoError(t, err)

	_, err = env.workshops.End(ctx, w.ID, host.ID)
	require.NoError(t, err)

	_, err = env.chat.PostMessage(ctx, w.ID, p1.ID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	history, err := env.chat.ListMessages(ctx, w.ID, p1.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "welcome", history[1].Content)
}

func TestWorkshopChat_MembersOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	outsider := env.state.addUser("Bilal", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	_, err := env.chat.PostMessage(ctx, w.ID, outsider.ID, "let me in")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.chat.ListMessages(ctx, w.ID, outsider.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	assert.ErrorIs(t, env.chat.AuthorizeSubscription(ctx, w.ID, outsider.ID), apperrors.ErrPermissionDenied)
	assert.NoError(t, env.chat.AuthorizeSubscription(ctx, w.ID, host.ID))
	assert.ErrorIs(t, env.chat.AuthorizeSubscription(ctx, 55555, host.ID), apperrors.ErrResourceNotFound)
}

func TestWorkshopChat_PostingMarksAttendance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	p1 := env.state.addUser("Asha", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Join(ctx, w.ID, p1.ID))
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	_, err := env.chat.PostMessage(ctx, w.ID, p1.ID, "present")
	require.NoError(t, err)

	detail, err := env.workshops.Get(ctx, w.ID, p1.ID)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 1)
	assert.True(t, detail.Participants[0].Attended)
}

func TestWorkshopChat_PublishesMessages(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	msg, err := env.chat.PostMessage(ctx, w.ID, host.ID, "broadcast")
	require.NoError(t, err)

	require.Equal(t, 1, env.publisher.count(EventWorkshopMessage))
	var published publishedEvent
	for _, e := range env.publisher.events {
		if e.eventType == EventWorkshopMessage {
			published = e
		}
	}
	assert.Equal(t, w.ID, published.workshopID)
	payload, ok := published.payload.(dto.WorkshopMessageResponse)
	require.True(t, ok)
	assert.Equal(t, msg.ID, payload.ID)
}

func TestWorkshopChat_SinceCursor(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	var ids []int64
	for i := 0; i < 4; i++ {
		msg, err := env.chat.PostMessage(ctx, w.ID, host.ID, fmt.Sprintf("line %d", i))
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	after, err := env.chat.ListMessages(ctx, w.ID, host.ID, ids[1])
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, ids[2], after[0].ID)
	assert.Equal(t, ids[3], after[1].ID)
}

func TestWorkshopChat_RejectsBlankContent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	_, err := env.chat.PostMessage(ctx, w.ID, host.ID, " \n ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestWorkshopChat_InstructorSeatMarksAttendance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Join(ctx, w.ID, host.ID))
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	_, err := env.chat.PostMessage(ctx, w.ID, host.ID, "starting now")
	require.NoError(t, err)

	detail, err := env.workshops.Get(ctx, w.ID, host.ID)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 1)
	assert.True(t, detail.Participants[0].Attended)
}

func TestWorkshopChat_HistoryPageCap(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.state.addUser("Host", true)
	w := env.newWorkshop(t, host.ID, 5)
	require.NoError(t, env.workshops.Start(ctx, w.ID, host.ID))

	const total = WorkshopChatHistoryLimit + 5
	for i := 0; i < total; i++ {
		_, err := env.chat.PostMessage(ctx, w.ID, host.ID, fmt.Sprintf("line %d", i))
		require.NoError(t, err)
	}

	page, err := env.chat.ListMessages(ctx, w.ID, host.ID, 0)
	require.NoError(t, err)
	require.Len(t, page, WorkshopChatHistoryLimit)
	assert.Equal(t, "line 0", page[0].Content)
	for i := 1; i < len(page); i++ {
		assert.Less(t, page[i-1].ID, page[i].ID)
	}

	rest, err := env.chat.ListMessages(ctx, w.ID, host.ID, page[len(page)-1].ID)
	require.NoError(t, err)
	require.Len(t, rest, total-WorkshopChatHistoryLimit)
	assert.Equal(t, fmt.Sprintf("line %d", WorkshopChatHistoryLimit), rest[0].Content)
	assert.Equal(t, fmt.Sprintf("line %d", total-1), rest[len(rest)-1].Content)
}

func TestWorkshopChat_LeaveEndsSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := newMemState()
	_, _, _, store, _, _ := state.stores()
	authz := appauth.NewAuthorizationService(store)
	log := zerolog.Nop()
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	workshops := NewWorkshopService(store, authz, hub, log)
	chat := NewWorkshopChatService(store, authz, hub, log)

	host := state.addUser("Host", true)
	p1 := state.addUser("Asha", true)
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	w, err := workshops.Create(ctx, host.ID, models.WorkshopDraft{Title: "Intro to Go", ScheduledAt: &at, MaxParticipants: 5})
	require.NoError(t, err)
	require.NoError(t, workshops.Join(ctx, w.ID, p1.ID))
	require.NoError(t, workshops.Start(ctx, w.ID, host.ID))

	for _, id := range []int64{host.ID, p1.ID} {
		require.NoError(t, chat.AuthorizeSubscription(ctx, w.ID, id))
		require.True(t, hub.Register(websocket.NewClient(hub, nil, id, w.ID, log)))
	}
	require.Equal(t, 2, hub.ClientCount(w.ID))

	require.NoError(t, workshops.Leave(ctx, w.ID, p1.ID))
	assert.Equal(t, 1, hub.ClientCount(w.ID))

	_, err = chat.PostMessage(ctx, w.ID, host.ID, "still here?")
	require.NoError(t, err)
	_, err = chat.ListMessages(ctx, w.ID, p1.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
