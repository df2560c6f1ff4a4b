package model

import "time"

type FeedbackState string

const (
	FeedbackStateDraft FeedbackState = "DRAFT"
	FeedbackStateSaved FeedbackState = "SAVED"
)

// Feedback is a student's review of a session. One record per
// (session, student) pair; it stays a DRAFT until saved with a rating.
type Feedback struct {
	ID        string        `json:"id"`
	SessionID string        `json:"sessionId"`
	StudentID string        `json:"studentId"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment"`
	Question  string        `json:"question"`
	State     FeedbackState `json:"state"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
