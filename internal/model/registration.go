package model

import "time"

type RegistrationStatus string

const (
	RegistrationStatusJoined    RegistrationStatus = "JOINED"
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED"
)

// Registration is a student's claim on a seat in a session. A student holds
// at most one JOINED registration per session; rejoining after a
// cancellation creates a fresh record.
type Registration struct {
	ID        string             `json:"id"`
	SessionID string             `json:"sessionId"`
	StudentID string             `json:"studentId"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`

	// Enrichment fields, never stored.
	Session *Session `json:"session,omitempty"`
	Student *User    `json:"student,omitempty"`
}
