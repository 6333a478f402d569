package models

import "time"

// Workshop is a scheduled live session run by an instructor
type Workshop struct {
	ID               int64          `json:"id" db:"id"`
	Title            string         `json:"title" db:"title"`
	Description      *string        `json:"description" db:"description"`
	InstructorID     int64          `json:"instructorId" db:"instructor_id"`
	ScheduledAt      time.Time      `json:"scheduledAt" db:"scheduled_at"`
	Duration         int            `json:"duration" db:"duration"`
	MaxParticipants  int            `json:"maxParticipants" db:"max_participants"`
	Status           WorkshopStatus `json:"status" db:"status"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	Instructor       UserSummary    `json:"instructor"`
	ParticipantCount int            `json:"participantCount"`
}

// IsInstructor reports whether userID runs the workshop
func (w *Workshop) IsInstructor(userID int64) bool {
	return w.InstructorID == userID
}

// WorkshopParticipant is a membership row joined with the member's profile
type WorkshopParticipant struct {
	ID         int64     `json:"id" db:"id"`
	WorkshopID int64     `json:"workshopId" db:"workshop_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	JoinedAt   time.Time `json:"joinedAt" db:"joined_at"`
	Attended   bool      `json:"attended" db:"attended"`
	User       UserSummary
}

// WorkshopMessage is a chat line posted during a live workshop
type WorkshopMessage struct {
	ID         int64     `json:"id" db:"id"`
	WorkshopID int64     `json:"workshopId" db:"workshop_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	User       UserSummary
}

// WorkshopDraft carries the fields of a workshop to be created
type WorkshopDraft struct {
	Title           string
	Description     *string
	ScheduledAt     *time.Time
	Duration        int
	MaxParticipants int
}

// WorkshopDetail is a workshop with its roster as seen by a viewer
type WorkshopDetail struct {
	*Workshop
	Participants []*WorkshopParticipant
	UserJoined   bool
	IsInstructor bool
}
