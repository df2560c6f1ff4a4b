package model

import "time"

type SessionMode string

const (
	ModeOnline  SessionMode = "ONLINE"
	ModeOffline SessionMode = "OFFLINE"
)

type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "OPEN"
	SessionStatusFull      SessionStatus = "FULL"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// Session is a tutor-led consultation slot with a capacity and a mode.
// Room is set only for OFFLINE sessions, URL only for ONLINE ones.
type Session struct {
	ID           string        `json:"id"`
	TutorID      string        `json:"tutorId"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Mode         SessionMode   `json:"mode"`
	Room         *string       `json:"room"`
	URL          *string       `json:"url"`
	StartAt      time.Time     `json:"startAt"`
	EndAt        time.Time     `json:"endAt"`
	Capacity     int           `json:"capacity"`
	CurrentCount int           `json:"currentCount"`
	Status       SessionStatus `json:"status"`
	Subjects     []string      `json:"subjects"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	// Filled when responses are enriched, never stored.
	Tutor *TutorSummary `json:"tutor,omitempty"`
}

// Terminal reports whether the session left the OPEN/FULL part of the
// state machine. Terminal sessions never change status again.
func (s *Session) Terminal() bool {
	return s.Status == SessionStatusCancelled || s.Status == SessionStatusCompleted
}

// RefreshStatus re-derives OPEN/FULL from the registration count. Both the
// registration paths and session updates go through this, so the
// count/status invariant is enforced in exactly one place.
func (s *Session) RefreshStatus() {
	if s.Terminal() {
		return
	}
	if s.CurrentCount >= s.Capacity {
		s.Status = SessionStatusFull
	} else {
		s.Status = SessionStatusOpen
	}
}
