package models

import "time"

// Connection is a directed request between two users that becomes a mutual
// relationship once accepted
type Connection struct {
	ID          int64            `json:"id" db:"id"`
	RequesterID int64            `json:"requesterId" db:"requester_id"`
	ReceiverID  int64            `json:"receiverId" db:"receiver_id"`
	Status      ConnectionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}

// Involves reports whether userID is one of the two parties
func (c *Connection) Involves(userID int64) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// Counterpart returns the party that is not userID
func (c *Connection) Counterpart(userID int64) int64 {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// RelationFor derives the viewer's relation to the other party
func (c *Connection) RelationFor(viewerID int64) RelationStatus {
	switch {
	case c.Status == ConnectionAccepted:
		return RelationConnected
	case c.RequesterID == viewerID:
		return RelationPendingSent
	default:
		return RelationPendingReceived
	}
}

// ConnectionEntry is a connection joined with the counterpart's profile
type ConnectionEntry struct {
	Connection
	User UserSummary
}
