// Package repository defines the storage contracts the services depend on.
// Two implementations exist: postgres (production) and memory (tests).
package repository

import (
	"context"
	"time"

	"tutorbook/internal/model"
)

// SessionFilter narrows session listings. Zero values mean "no filter".
type SessionFilter struct {
	TutorID  string
	Statuses []model.SessionStatus
	Subject  string // case-insensitive substring match against subjects
}

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	// GetByID returns (nil, nil) when the session does not exist.
	GetByID(ctx context.Context, id string) (*model.Session, error)
	// GetByIDForUpdate is GetByID that additionally locks the record for
	// the duration of the surrounding Atomic unit, so capacity checks and
	// counter updates of concurrent requests cannot interleave. Stores
	// whose Atomic is already exclusive may alias it to GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
	List(ctx context.Context, f SessionFilter) ([]*model.Session, error)
	// ActiveByTutor returns the tutor's non-cancelled sessions.
	ActiveByTutor(ctx context.Context, tutorID string) ([]*model.Session, error)
	// ActiveByRoom returns non-cancelled OFFLINE sessions in the room.
	ActiveByRoom(ctx context.Context, room string) ([]*model.Session, error)
	// ActiveByStudent returns the non-cancelled sessions behind the
	// student's JOINED registrations.
	ActiveByStudent(ctx context.Context, studentID string) ([]*model.Session, error)
}

type RegistrationRepository interface {
	Create(ctx context.Context, r *model.Registration) error
	// FindJoined returns the JOINED registration for the pair, or (nil, nil).
	FindJoined(ctx context.Context, sessionID, studentID string) (*model.Registration, error)
	JoinedBySession(ctx context.Context, sessionID string) ([]*model.Registration, error)
	JoinedByStudent(ctx context.Context, studentID string) ([]*model.Registration, error)
	Update(ctx context.Context, r *model.Registration) error
	// CancelBySession cancels every JOINED registration of a session and
	// returns how many records it touched.
	CancelBySession(ctx context.Context, sessionID string, at time.Time) (int64, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
	// Find returns (nil, nil) when no record exists for the pair.
	Find(ctx context.Context, sessionID, studentID string) (*model.Feedback, error)
	Update(ctx context.Context, f *model.Feedback) error
	// Delete reports whether a record existed.
	Delete(ctx context.Context, sessionID, studentID string) (bool, error)
}

// UserRepository is a read-only dependency; accounts are managed outside
// this service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

// Store bundles the collections and provides per-request atomicity.
type Store interface {
	Sessions() SessionRepository
	Registrations() RegistrationRepository
	Feedback() FeedbackRepository
	Users() UserRepository

	// Atomic runs fn against a view of the store where all reads and
	// writes commit together. Services validate against the snapshot
	// first and only then mutate, so a failed fn leaves no partial state.
	Atomic(ctx context.Context, fn func(Store) error) error
}
