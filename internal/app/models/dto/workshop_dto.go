package dto

import (
	"time"

	"github.com/yigit/campusconnect/internal/app/models"
)

// CreateWorkshopRequest is the body of a new workshop. ScheduledAt accepts
// RFC3339 or a local "2006-01-02T15:04" timestamp.
type CreateWorkshopRequest struct {
	Title           string  `json:"title" binding:"max=200"`
	Description     *string `json:"description"`
	ScheduledAt     string  `json:"scheduledAt"`
	Duration        *int    `json:"duration"`
	MaxParticipants *int    `json:"maxParticipants"`
}

// WorkshopPerson is the compact user shape used by workshop payloads
type WorkshopPerson struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Photo *string `json:"photo"`
}

func newWorkshopPerson(u models.UserSummary) WorkshopPerson {
	return WorkshopPerson{ID: u.ID, Name: u.Name, Photo: u.ProfilePhoto}
}

// WorkshopResponse is a workshop list entry
type WorkshopResponse struct {
	ID               int64                 `json:"id"`
	Title            string                `json:"title"`
	Description      *string               `json:"description"`
	ScheduledAt      time.Time             `json:"scheduledAt"`
	Duration         int                   `json:"duration"`
	MaxParticipants  int                   `json:"maxParticipants"`
	Status           models.WorkshopStatus `json:"status"`
	CreatedAt        time.Time             `json:"createdAt"`
	Instructor       WorkshopPerson        `json:"instructor"`
	ParticipantCount int                   `json:"participantCount"`
}

// NewWorkshopResponse maps a workshop row
func NewWorkshopResponse(w *models.Workshop) WorkshopResponse {
	return WorkshopResponse{
		ID:               w.ID,
		Title:            w.Title,
		Description:      w.Description,
		ScheduledAt:      w.ScheduledAt,
		Duration:         w.Duration,
		MaxParticipants:  w.MaxParticipants,
		Status:           w.Status,
		CreatedAt:        w.CreatedAt,
		Instructor:       newWorkshopPerson(w.Instructor),
		ParticipantCount: w.ParticipantCount,
	}
}

// NewWorkshopResponses maps a workshop list
func NewWorkshopResponses(workshops []*models.Workshop) []WorkshopResponse {
	out := make([]WorkshopResponse, 0, len(workshops))
	for _, w := range workshops {
		out = append(out, NewWorkshopResponse(w))
	}
	return out
}

// WorkshopParticipantResponse is one roster entry
type WorkshopParticipantResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Photo    *string   `json:"photo"`
	JoinedAt time.Time `json:"joinedAt"`
	Attended bool      `json:"attended"`
}

// WorkshopDetailResponse is a workshop with its roster
type WorkshopDetailResponse struct {
	WorkshopResponse
	Participants []WorkshopParticipantResponse `json:"participants"`
	UserJoined   bool                          `json:"userJoined"`
	IsInstructor bool                          `json:"isInstructor"`
}

// NewWorkshopDetailResponse maps a workshop detail
func NewWorkshopDetailResponse(d *models.WorkshopDetail) *WorkshopDetailResponse {
	resp := &WorkshopDetailResponse{
		WorkshopResponse: NewWorkshopResponse(d.Workshop),
		Participants:     make([]WorkshopParticipantResponse, 0, len(d.Participants)),
		UserJoined:       d.UserJoined,
		IsInstructor:     d.IsInstructor,
	}
	for _, p := range d.Participants {
		resp.Participants = append(resp.Participants, WorkshopParticipantResponse{
			ID:       p.UserID,
			Name:     p.User.Name,
			Photo:    p.User.ProfilePhoto,
			JoinedAt: p.JoinedAt,
			Attended: p.Attended,
		})
	}
	return resp
}

// EndWorkshopResponse acknowledges the end of a workshop
type EndWorkshopResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	BadgesAwarded int64  `json:"badgesAwarded"`
}

// PostWorkshopMessageRequest is the body of a workshop chat line
type PostWorkshopMessageRequest struct {
	Content string `json:"content"`
}

// WorkshopMessageResponse is a workshop chat line
type WorkshopMessageResponse struct {
	ID        int64          `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	User      WorkshopPerson `json:"user"`
}

// NewWorkshopMessageResponse maps a chat line
func NewWorkshopMessageResponse(m *models.WorkshopMessage) WorkshopMessageResponse {
	return WorkshopMessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		User:      newWorkshopPerson(m.User),
	}
}

// NewWorkshopMessageResponses maps chat history
func NewWorkshopMessageResponses(messages []*models.WorkshopMessage) []WorkshopMessageResponse {
	out := make([]WorkshopMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewWorkshopMessageResponse(m))
	}
	return out
}
