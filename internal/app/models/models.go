package models

// ConnectionStatus is the state of a connection row
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
)

// RelationStatus describes how a viewer relates to another user
type RelationStatus string

const (
	RelationSelf            RelationStatus = "self"
	RelationNone            RelationStatus = "none"
	RelationConnected       RelationStatus = "connected"
	RelationPendingSent     RelationStatus = "pending_sent"
	RelationPendingReceived RelationStatus = "pending_received"
)

// WorkshopStatus is the lifecycle state of a workshop
type WorkshopStatus string

const (
	WorkshopScheduled WorkshopStatus = "scheduled"
	WorkshopLive      WorkshopStatus = "live"
	WorkshopCompleted WorkshopStatus = "completed"
)

// Valid reports whether s is a known workshop status
func (s WorkshopStatus) Valid() bool {
	switch s {
	case WorkshopScheduled, WorkshopLive, WorkshopCompleted:
		return true
	}
	return false
}

// WorkshopAttendeeBadge is awarded to every attended participant when a workshop ends
const WorkshopAttendeeBadge = "Workshop Attendee"
