package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestProfileUpdate_ApplyTo(t *testing.T) {
	u := &User{Name: "Ana", Bio: strPtr("old")}

	ProfileUpdate{
		Branch: strPtr("  Computer Science "),
		Year:   strPtr("3"),
		Bio:    strPtr("   "),
	}.ApplyTo(u)

	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "Computer Science", *u.Branch)
	assert.Equal(t, "3", *u.Year)
	assert.Nil(t, u.Bio)
	assert.True(t, u.HasCompleteProfile())
}

func TestHasCompleteProfile(t *testing.T) {
	assert.False(t, (&User{Name: "Ana", Branch: strPtr("CS")}).HasCompleteProfile())
	assert.False(t, (&User{Name: "Ana", Branch: strPtr(" "), Year: strPtr("2")}).HasCompleteProfile())
	assert.True(t, (&User{Name: "Ana", Branch: strPtr("CS"), Year: strPtr("2")}).HasCompleteProfile())
}

func TestProfileUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ProfileUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Bio: strPtr("")}.IsEmpty())
}

func TestConnection_RelationFor(t *testing.T) {
	c := &Connection{RequesterID: 1, ReceiverID: 2, Status: ConnectionPending}
	assert.Equal(t, RelationPendingSent, c.RelationFor(1))
	assert.Equal(t, RelationPendingReceived, c.RelationFor(2))
	assert.Equal(t, int64(2), c.Counterpart(1))
	assert.True(t, c.Involves(2))
	assert.False(t, c.Involves(3))

	c.Status = ConnectionAccepted
	assert.Equal(t, RelationConnected, c.RelationFor(2))
}

func TestWorkshopStatus_Valid(t *testing.T) {
	assert.True(t, WorkshopLive.Valid())
	assert.False(t, WorkshopStatus("cancelled").Valid())
}
