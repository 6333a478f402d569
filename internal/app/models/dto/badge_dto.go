package dto

import (
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
)

// AwardBadgeRequest grants a catalog badge to a user
type AwardBadgeRequest struct {
	UserID     int64  `json:"userId" binding:"required,min=1"`
	BadgeName  string `json:"badgeName" binding:"required"`
	WorkshopID *int64 `json:"workshopId" binding:"omitempty,min=1"`
}

// UserBadgeResponse is a badge held by a user
type UserBadgeResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Icon          *string   `json:"icon"`
	AwardedAt     time.Time `json:"awardedAt"`
	WorkshopID    *int64    `json:"workshopId"`
	WorkshopTitle *string   `json:"workshopTitle"`
}

// NewUserBadgeResponses maps held badges
func NewUserBadgeResponses(badges []*models.UserBadge) []UserBadgeResponse {
	out := make([]UserBadgeResponse, 0, len(badges))
	for _, b := range badges {
		out = append(out, UserBadgeResponse{
			ID:            b.ID,
			Name:          b.Name,
			Description:   b.Description,
			Icon:          b.Icon,
			AwardedAt:     b.AwardedAt,
			WorkshopID:    b.WorkshopID,
			WorkshopTitle: b.WorkshopTitle,
		})
	}
	return out
}
