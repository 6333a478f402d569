package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                int64      `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Email             string     `json:"email" db:"email"`
	Password          string     `json:"-" db:"password"`
	Branch            *string    `json:"branch" db:"branch"`
	Year              *string    `json:"year" db:"year"`
	Bio               *string    `json:"bio" db:"bio"`
	ProfilePhoto      *string    `json:"profilePhoto" db:"profile_photo"`
	IsVerified        bool       `json:"isVerified" db:"is_verified"`
	VerificationToken *string    `json:"-" db:"verification_token"`
	ProfileCompleted  bool       `json:"profileCompleted" db:"profile_completed"`
	IsOnline          bool       `json:"isOnline" db:"is_online"`
	LastSeen          *time.Time `json:"lastSeen" db:"last_seen"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}

// UserSummary is the public slice of a user shown next to content
type UserSummary struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Branch       *string `json:"branch,omitempty"`
	Year         *string `json:"year,omitempty"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// Summary returns the public view of u
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Branch:       u.Branch,
		Year:         u.Year,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// HasCompleteProfile reports whether name, branch and year are all filled in
func (u *User) HasCompleteProfile() bool {
	return strings.TrimSpace(u.Name) != "" && nonEmpty(u.Branch) && nonEmpty(u.Year)
}

// ProfileUpdate carries the optional fields of a profile edit. A nil field is left unchanged.
type ProfileUpdate struct {
	Name   *string
	Branch *string
	Year   *string
	Bio    *string
}

// IsEmpty reports whether no field is set
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Branch == nil && p.Year == nil && p.Bio == nil
}

// ApplyTo copies the set fields onto u, trimming whitespace. Empty optional
// fields are stored as NULL.
func (p ProfileUpdate) ApplyTo(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Branch != nil {
		u.Branch = trimmedOrNil(*p.Branch)
	}
	if p.Year != nil {
		u.Year = trimmedOrNil(*p.Year)
	}
	if p.Bio != nil {
		u.Bio = trimmedOrNil(*p.Bio)
	}
}

// Presence is the online state of a user
type Presence struct {
	UserID   int64      `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// UserProfile is another user's profile as seen by a viewer
type UserProfile struct {
	User            *User
	Relation        RelationStatus
	ConnectionID    *int64
	PostCount       int
	ConnectionCount int
	IsOwnProfile    bool
}
