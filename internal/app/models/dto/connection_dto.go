package dto

import (
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
)

// ConnectionResponse is one entry of a connection list. Status is omitted
// for request lists, where it is always pending.
type ConnectionResponse struct {
	ID        int64                   `json:"id"`
	Status    models.ConnectionStatus `json:"status,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
	User      models.UserSummary      `json:"user"`
}

// NewConnectionResponses maps connection entries; withStatus controls the status field
func NewConnectionResponses(entries []*models.ConnectionEntry, withStatus bool) []ConnectionResponse {
	out := make([]ConnectionResponse, 0, len(entries))
	for _, e := range entries {
		resp := ConnectionResponse{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			User:      e.User,
		}
		if withStatus {
			resp.Status = e.Status
		}
		out = append(out, resp)
	}
	return out
}

// ConnectionRequestResponse is returned when a request is sent
type ConnectionRequestResponse struct {
	ID      int64                   `json:"id"`
	Status  models.ConnectionStatus `json:"status"`
	Message string                  `json:"message"`
}

// ConnectionStatusResponse describes the caller's relation to another user
type ConnectionStatusResponse struct {
	Status       models.RelationStatus `json:"status"`
	ConnectionID *int64                `json:"connectionId"`
}

// ConnectionActionResponse acknowledges accept and remove
type ConnectionActionResponse struct {
	Message string                  `json:"message"`
	Status  models.ConnectionStatus `json:"status,omitempty"`
}
