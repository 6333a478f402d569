package services

import (
	"context"

	"github.com/yigit/campusconnect/internal/app/models"
)

// Services defined in this package:
// - AuthService: signup, email verification, login and caller resolution
// - UserService: own profile, photo upload, search and public profiles
// - ConnectionService: the connection graph
// - MessageService: direct messages, gated on an accepted connection
// - WorkshopService: workshop lifecycle, roster and attendance
// - WorkshopChatService: chat of live workshops
// - BadgeService, PostService, PresenceService, ChatbotService

// The stores below are the persistence contracts the services depend on.
// The repositories package satisfies them against Postgres.

// UserStore persists users and their presence
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	MarkVerified(ctx context.Context, userID int64) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateProfilePhoto(ctx context.Context, userID int64, path string) (*string, error)
	Search(ctx context.Context, term string, excludeID int64, limit uint64) ([]*models.User, error)
	SetPresence(ctx context.Context, userID int64, online bool) error
	GetPresence(ctx context.Context, userID int64) (*models.Presence, error)
	ListConnectionPresence(ctx context.Context, userID int64) ([]*models.Presence, error)
}

// ConnectionStore persists the connection graph
type ConnectionStore interface {
	Create(ctx context.Context, requesterID, receiverID int64) (*models.Connection, error)
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	FindBetween(ctx context.Context, userA, userB int64) (*models.Connection, error)
	Accept(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	AreConnected(ctx context.Context, userA, userB int64) (bool, error)
	CountAccepted(ctx context.Context, userID int64) (int, error)
	ListAccepted(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error)
	ListIncoming(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error)
	ListOutgoing(ctx context.Context, userID int64) ([]*models.ConnectionEntry, error)
}

// MessageStore persists direct messages
type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	ListThreads(ctx context.Context, userID int64) ([]*models.Thread, error)
	Conversation(ctx context.Context, userA, userB int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, readerID, senderID int64) (int64, error)
	CountUnreadFromConnections(ctx context.Context, userID int64) (int, error)
}

// WorkshopStore persists workshops, rosters and workshop chat
type WorkshopStore interface {
	Create(ctx context.Context, w *models.Workshop) error
	GetByID(ctx context.Context, id int64) (*models.Workshop, error)
	List(ctx context.Context, status *models.WorkshopStatus) ([]*models.Workshop, error)
	ListParticipants(ctx context.Context, workshopID int64) ([]*models.WorkshopParticipant, error)
	IsParticipant(ctx context.Context, workshopID, userID int64) (bool, error)
	Join(ctx context.Context, workshopID, userID int64) (*models.WorkshopParticipant, error)
	Leave(ctx context.Context, workshopID, userID int64) (bool, error)
	Transition(ctx context.Context, workshopID int64, from, to models.WorkshopStatus) (bool, error)
	Complete(ctx context.Context, workshopID int64, badgeName string) (int64, error)
	MarkAttended(ctx context.Context, workshopID, userID int64) (bool, error)
	PostMessage(ctx context.Context, workshopID, userID int64, content string, markAttendance bool) (*models.WorkshopMessage, error)
	ListMessages(ctx context.Context, workshopID, sinceID int64, limit uint64) ([]*models.WorkshopMessage, error)
}

// BadgeStore persists the badge catalog and awards
type BadgeStore interface {
	List(ctx context.Context) ([]*models.Badge, error)
	GetByName(ctx context.Context, name string) (*models.Badge, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	Award(ctx context.Context, userID, badgeID int64, workshopID *int64) (bool, error)
	EnsureCatalog(ctx context.Context, badges []models.Badge) (int64, error)
}

// PostStore persists the feed
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	Like(ctx context.Context, postID, userID int64) error
	Unlike(ctx context.Context, postID, userID int64) (bool, error)
	CountLikes(ctx context.Context, postID int64) (int, error)
	AddComment(ctx context.Context, comment *models.Comment) (int, error)
	ListComments(ctx context.Context, postID int64) ([]*models.Comment, error)
	Share(ctx context.Context, rootID, userID int64, content string) (int64, int, error)
}
