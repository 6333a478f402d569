package dto

import (
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
)

// MeResponse is the caller's own profile
type MeResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Branch           *string   `json:"branch"`
	Year             *string   `json:"year"`
	Bio              *string   `json:"bio"`
	ProfilePhoto     *string   `json:"profilePhoto"`
	ProfileCompleted bool      `json:"profileCompleted"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewMeResponse maps a user row to MeResponse
func NewMeResponse(u *models.User) *MeResponse {
	return &MeResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Branch:           u.Branch,
		Year:             u.Year,
		Bio:              u.Bio,
		ProfilePhoto:     u.ProfilePhoto,
		ProfileCompleted: u.ProfileCompleted,
		CreatedAt:        u.CreatedAt,
	}
}

// UpdateProfileRequest carries optional profile fields; omitted fields are unchanged
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=100"`
	Branch *string `json:"branch" binding:"omitempty,max=100"`
	Year   *string `json:"year" binding:"omitempty,max=20"`
	Bio    *string `json:"bio" binding:"omitempty,max=500"`
}

// ToModel converts the request to a profile update
func (r *UpdateProfileRequest) ToModel() models.ProfileUpdate {
	return models.ProfileUpdate{
		Name:   r.Name,
		Branch: r.Branch,
		Year:   r.Year,
		Bio:    r.Bio,
	}
}

// UpdateProfilePhotoResponse represents a successful profile photo update
type UpdateProfilePhotoResponse struct {
	Message      string  `json:"message"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// UserSearchResult is one hit of a user search
type UserSearchResult struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Branch       *string `json:"branch"`
	Year         *string `json:"year"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// NewUserSearchResults maps search hits
func NewUserSearchResults(users []*models.User) []UserSearchResult {
	results := make([]UserSearchResult, 0, len(users))
	for _, u := range users {
		results = append(results, UserSearchResult{
			ID:           u.ID,
			Name:         u.Name,
			Branch:       u.Branch,
			Year:         u.Year,
			Bio:          u.Bio,
			ProfilePhoto: u.ProfilePhoto,
		})
	}
	return results
}

// PublicProfileResponse is another user's profile with the viewer's relation to them
type PublicProfileResponse struct {
	ID               int64                 `json:"id"`
	Name             string                `json:"name"`
	Branch           *string               `json:"branch"`
	Year             *string               `json:"year"`
	Bio              *string               `json:"bio"`
	ProfilePhoto     *string               `json:"profilePhoto"`
	CreatedAt        time.Time             `json:"createdAt"`
	ConnectionStatus models.RelationStatus `json:"connectionStatus"`
	ConnectionID     *int64                `json:"connectionId"`
	PostCount        int                   `json:"postCount"`
	ConnectionCount  int                   `json:"connectionCount"`
	IsOwnProfile     bool                  `json:"isOwnProfile"`
}

// NewPublicProfileResponse maps a viewed profile
func NewPublicProfileResponse(p *models.UserProfile) *PublicProfileResponse {
	return &PublicProfileResponse{
		ID:               p.User.ID,
		Name:             p.User.Name,
		Branch:           p.User.Branch,
		Year:             p.User.Year,
		Bio:              p.User.Bio,
		ProfilePhoto:     p.User.ProfilePhoto,
		CreatedAt:        p.User.CreatedAt,
		ConnectionStatus: p.Relation,
		ConnectionID:     p.ConnectionID,
		PostCount:        p.PostCount,
		ConnectionCount:  p.ConnectionCount,
		IsOwnProfile:     p.IsOwnProfile,
	}
}

// PresenceResponse is the online state of one user
type PresenceResponse struct {
	UserID   int64      `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

// PresenceEntry is a value of the connections presence map
type PresenceEntry struct {
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

// PresenceUpdateResponse acknowledges a heartbeat or offline call
type PresenceUpdateResponse struct {
	Success bool `json:"success"`
	Online  bool `json:"online"`
}

// NewPresenceMap keys presence entries by user id
func NewPresenceMap(presence []*models.Presence) map[int64]PresenceEntry {
	out := make(map[int64]PresenceEntry, len(presence))
	for _, p := range presence {
		out[p.UserID] = PresenceEntry{IsOnline: p.IsOnline, LastSeen: p.LastSeen}
	}
	return out
}
