package dto

import (
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
)

// SendMessageRequest is the body of a direct message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// DirectMessageResponse is a direct message as seen by one of its parties
type DirectMessageResponse struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"senderId"`
	ReceiverID   int64     `json:"receiverId"`
	Content      string    `json:"content"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
	IsOwnMessage bool      `json:"isOwnMessage"`
}

// NewDirectMessageResponse maps a message for viewerID
func NewDirectMessageResponse(m *models.Message, viewerID int64) DirectMessageResponse {
	return DirectMessageResponse{
		ID:           m.ID,
		SenderID:     m.SenderID,
		ReceiverID:   m.ReceiverID,
		Content:      m.Content,
		IsRead:       m.IsRead,
		CreatedAt:    m.CreatedAt,
		IsOwnMessage: m.SenderID == viewerID,
	}
}

// ChatPartner is the counterpart shown in threads and conversations
type ChatPartner struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// ThreadLastMessage previews the latest message of a thread
type ThreadLastMessage struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	SenderID     int64     `json:"senderId"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
	IsOwnMessage bool      `json:"isOwnMessage"`
}

// ThreadResponse is one inbox entry
type ThreadResponse struct {
	User        ChatPartner        `json:"user"`
	LastMessage *ThreadLastMessage `json:"lastMessage"`
	UnreadCount int                `json:"unreadCount"`
}

// NewThreadResponses maps inbox threads for viewerID
func NewThreadResponses(threads []*models.Thread, viewerID int64) []ThreadResponse {
	out := make([]ThreadResponse, 0, len(threads))
	for _, t := range threads {
		resp := ThreadResponse{
			User: ChatPartner{
				ID:           t.User.ID,
				Name:         t.User.Name,
				ProfilePhoto: t.User.ProfilePhoto,
			},
			UnreadCount: t.UnreadCount,
		}
		if m := t.LastMessage; m != nil {
			resp.LastMessage = &ThreadLastMessage{
				ID:           m.ID,
				Content:      m.Content,
				SenderID:     m.SenderID,
				IsRead:       m.IsRead,
				CreatedAt:    m.CreatedAt,
				IsOwnMessage: m.SenderID == viewerID,
			}
		}
		out = append(out, resp)
	}
	return out
}

// ConversationResponse is the full history with one user
type ConversationResponse struct {
	User     ChatPartner             `json:"user"`
	Messages []DirectMessageResponse `json:"messages"`
}

// NewConversationResponse maps a conversation for viewerID
func NewConversationResponse(other *models.User, messages []*models.Message, viewerID int64) *ConversationResponse {
	resp := &ConversationResponse{
		User: ChatPartner{
			ID:           other.ID,
			Name:         other.Name,
			ProfilePhoto: other.ProfilePhoto,
		},
		Messages: make([]DirectMessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, NewDirectMessageResponse(m, viewerID))
	}
	return resp
}

// MarkReadResponse reports how many messages were marked read
type MarkReadResponse struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updatedCount"`
}

// UnreadCountResponse is the caller's unread direct message total
type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}
