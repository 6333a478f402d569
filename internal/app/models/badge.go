package models

import "time"

// Badge is an entry of the badge catalog
type Badge struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Icon        *string `json:"icon" db:"icon"`
}

// UserBadge is a badge held by a user, optionally tied to a workshop
type UserBadge struct {
	Badge
	UserID        int64     `json:"userId" db:"user_id"`
	WorkshopID    *int64    `json:"workshopId" db:"workshop_id"`
	WorkshopTitle *string   `json:"workshopTitle"`
	AwardedAt     time.Time `json:"awardedAt" db:"awarded_at"`
}
