package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
)

func TestSendMessage_RequiresAcceptedConnection(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.state.addUser("Asha", true)
	b := env.state.addUser("Bilal", true)

	_, err := env.messages.Send(ctx, a.ID, b.ID, "hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotConnected, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	conn, err := env.connections.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = env.messages.Send(ctx, a.ID, b.ID, "hi")
	assert.Equal(t, apperrors.CodeNotConnected, apperrors.CodeOf(err), "pending is not connected")

	_, err = env.connections.Accept(ctx, conn.ID, b.ID)
	require.NoError(t, err)

	msg, err := env.messages.Send(ctx, a.ID, b.ID, "  hi there  ")
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Content)
	assert.False(t, msg.IsRead)
}

func TestMessaging_GateClosesWhenConnectionRemoved(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.state.addUser("Asha", true)
	b := env.state.addUser("Bilal", true)

	conn := env.connect(t, a.ID, b.ID)
	_, err := env.messages.Send(ctx, a.ID, b.ID, "first")
	require.NoError(t, err)

	require.NoError(t, env.connections.Remove(ctx, conn.ID, b.ID))

	_, err = env.messages.Send(ctx, a.ID, b.ID, "second")
	assert.Equal(t, apperrors.CodeNotConnected, apperrors.CodeOf(err))

	_, _, err = env.messages.Conversation(ctx, b.ID, a.ID)
	assert.Equal(t, apperrors.CodeNotConnected, apperrors.CodeOf(err))

	_, err = env.messages.MarkRead(ctx, b.ID, a.ID)
	assert.Equal(t, apperrors.CodeNotConnected, apperrors.CodeOf(err))

	unread, err := env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread, "messages from former connections are not counted")
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.state.addUser("Asha", true)

	_, err := env.messages.Send(ctx, a.ID, a.ID, "note to self")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.messages.Send(ctx, a.ID, 77, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestConversationAndMarkRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.state.addUser("Asha", true)
	b := env.state.addUser("Bilal", true)
	env.connect(t, a.ID, b.ID)

	for _, text := range []string{"one", "two"} {
		_, err := env.messages.Send(ctx, a.ID, b.ID, text)
		require.NoError(t, err)
	}
	_, err := env.messages.Send(ctx, b.ID, a.ID, "three")
	require.NoError(t, err)

	other, history, err := env.messages.Conversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, other.ID)
	require.Len(t, history, 3)
	assert.Equal(t, "one", history[0].Content)
	assert.Equal(t, "three", history[2].Content)

	unread, err := env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	updated, err := env.messages.MarkRead(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}

func TestListThreads_Ordering(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	me := env.state.addUser("Asha", true)
	quiet := env.state.addUser("Bilal", true)
	older := env.state.addUser("Chen", true)
	newer := env.state.addUser("Dana", true)

	env.connect(t, me.ID, quiet.ID)
	env.connect(t, me.ID, older.ID)
	env.connect(t, me.ID, newer.ID)

	_, err := env.messages.Send(ctx, older.ID, me.ID, "earlier")
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, me.ID, newer.ID, "later")
	require.NoError(t, err)

	threads, err := env.messages.ListThreads(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, threads, 3)

	assert.Equal(t, newer.ID, threads[0].User.ID)
	assert.Equal(t, older.ID, threads[1].User.ID)
	assert.Equal(t, 1, threads[1].UnreadCount)
	assert.Equal(t, quiet.ID, threads[2].User.ID)
	assert.Nil(t, threads[2].LastMessage)
}
