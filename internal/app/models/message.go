package models

import "time"

// Message is a direct message between two connected users
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	ReceiverID int64     `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Thread is one conversation in a user's inbox
type Thread struct {
	User        UserSummary
	LastMessage *Message
	UnreadCount int
}
