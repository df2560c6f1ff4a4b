// Package memory is a mutex-guarded in-memory Store. It backs the test
// suite and works as a throwaway development store; durability comes from
// the postgres implementation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tutorbook/internal/model"
	"tutorbook/internal/repository"
)

type data struct {
	sessions      map[string]*model.Session
	registrations map[string]*model.Registration
	feedback      map[string]*model.Feedback
	users         map[string]*model.User
}

// Store implements repository.Store. A single mutex serializes Atomic
// units, which is exactly the per-collection locking the read-modify-write
// contract needs in one process. Atomic provides mutual exclusion, not
// rollback; callers follow validate-then-commit.
type Store struct {
	mu   *sync.Mutex
	inTx bool
	d    *data
}

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		d: &data{
			sessions:      make(map[string]*model.Session),
			registrations: make(map[string]*model.Registration),
			feedback:      make(map[string]*model.Feedback),
			users:         make(map[string]*model.User),
		},
	}
}

func (s *Store) Sessions() repository.SessionRepository           { return &sessionRepo{s} }
func (s *Store) Registrations() repository.RegistrationRepository { return &registrationRepo{s} }
func (s *Store) Feedback() repository.FeedbackRepository          { return &feedbackRepo{s} }
func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }

func (s *Store) Atomic(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Store{mu: s.mu, inTx: true, d: s.d})
}

// lock takes the store mutex for a single call unless an Atomic unit
// already holds it.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// PutUser seeds a user record; accounts are read-only for the service
// itself, so only fixtures and dev seeding use this.
func (s *Store) PutUser(u *model.User) {
	defer s.lock()()
	s.d.users[u.ID] = u
}

func cloneSession(s *model.Session) *model.Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Subjects = append([]string(nil), s.Subjects...)
	if s.Room != nil {
		room := *s.Room
		c.Room = &room
	}
	if s.URL != nil {
		url := *s.URL
		c.URL = &url
	}
	c.Tutor = nil
	return &c
}

func cloneRegistration(r *model.Registration) *model.Registration {
	if r == nil {
		return nil
	}
	c := *r
	c.Session = nil
	c.Student = nil
	return &c
}

func cloneFeedback(f *model.Feedback) *model.Feedback {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(ctx context.Context, sess *model.Session) error {
	defer r.s.lock()()
	r.s.d.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	defer r.s.lock()()
	return cloneSession(r.s.d.sessions[id]), nil
}

func (r *sessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Session, error) {
	// Atomic already holds the store mutex, nothing extra to lock.
	return r.GetByID(ctx, id)
}

func (r *sessionRepo) Update(ctx context.Context, sess *model.Session) error {
	defer r.s.lock()()
	r.s.d.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (r *sessionRepo) List(ctx context.Context, f repository.SessionFilter) ([]*model.Session, error) {
	defer r.s.lock()()
	var out []*model.Session
	for _, sess := range r.s.d.sessions {
		if f.TutorID != "" && sess.TutorID != f.TutorID {
			continue
		}
		if len(f.Statuses) > 0 && !statusIn(sess.Status, f.Statuses) {
			continue
		}
		if f.Subject != "" && !subjectMatches(sess.Subjects, f.Subject) {
			continue
		}
		out = append(out, cloneSession(sess))
	}
	sortSessions(out)
	return out, nil
}

func (r *sessionRepo) ActiveByTutor(ctx context.Context, tutorID string) ([]*model.Session, error) {
	defer r.s.lock()()
	var out []*model.Session
	for _, sess := range r.s.d.sessions {
		if sess.TutorID == tutorID && sess.Status != model.SessionStatusCancelled {
			out = append(out, cloneSession(sess))
		}
	}
	sortSessions(out)
	return out, nil
}

func (r *sessionRepo) ActiveByRoom(ctx context.Context, room string) ([]*model.Session, error) {
	defer r.s.lock()()
	var out []*model.Session
	for _, sess := range r.s.d.sessions {
		if sess.Mode != model.ModeOffline || sess.Status == model.SessionStatusCancelled {
			continue
		}
		if sess.Room != nil && *sess.Room == room {
			out = append(out, cloneSession(sess))
		}
	}
	sortSessions(out)
	return out, nil
}

func (r *sessionRepo) ActiveByStudent(ctx context.Context, studentID string) ([]*model.Session, error) {
	defer r.s.lock()()
	var out []*model.Session
	for _, reg := range r.s.d.registrations {
		if reg.StudentID != studentID || reg.Status != model.RegistrationStatusJoined {
			continue
		}
		sess := r.s.d.sessions[reg.SessionID]
		if sess != nil && sess.Status != model.SessionStatusCancelled {
			out = append(out, cloneSession(sess))
		}
	}
	sortSessions(out)
	return out, nil
}

func statusIn(status model.SessionStatus, statuses []model.SessionStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func subjectMatches(subjects []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, s := range subjects {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func sortSessions(sessions []*model.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartAt.Before(sessions[j].StartAt)
	})
}

type registrationRepo struct{ s *Store }

func (r *registrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	defer r.s.lock()()
	r.s.d.registrations[reg.ID] = cloneRegistration(reg)
	return nil
}

func (r *registrationRepo) FindJoined(ctx context.Context, sessionID, studentID string) (*model.Registration, error) {
	defer r.s.lock()()
	for _, reg := range r.s.d.registrations {
		if reg.SessionID == sessionID && reg.StudentID == studentID && reg.Status == model.RegistrationStatusJoined {
			return cloneRegistration(reg), nil
		}
	}
	return nil, nil
}

func (r *registrationRepo) JoinedBySession(ctx context.Context, sessionID string) ([]*model.Registration, error) {
	defer r.s.lock()()
	var out []*model.Registration
	for _, reg := range r.s.d.registrations {
		if reg.SessionID == sessionID && reg.Status == model.RegistrationStatusJoined {
			out = append(out, cloneRegistration(reg))
		}
	}
	sortRegistrations(out)
	return out, nil
}

func (r *registrationRepo) JoinedByStudent(ctx context.Context, studentID string) ([]*model.Registration, error) {
	defer r.s.lock()()
	var out []*model.Registration
	for _, reg := range r.s.d.registrations {
		if reg.StudentID == studentID && reg.Status == model.RegistrationStatusJoined {
			out = append(out, cloneRegistration(reg))
		}
	}
	sortRegistrations(out)
	return out, nil
}

func (r *registrationRepo) Update(ctx context.Context, reg *model.Registration) error {
	defer r.s.lock()()
	r.s.d.registrations[reg.ID] = cloneRegistration(reg)
	return nil
}

func (r *registrationRepo) CancelBySession(ctx context.Context, sessionID string, at time.Time) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, reg := range r.s.d.registrations {
		if reg.SessionID == sessionID && reg.Status == model.RegistrationStatusJoined {
			reg.Status = model.RegistrationStatusCancelled
			reg.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func sortRegistrations(regs []*model.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].CreatedAt.Before(regs[j].CreatedAt)
	})
}

type feedbackRepo struct{ s *Store }

func feedbackKey(sessionID, studentID string) string {
	return sessionID + "|" + studentID
}

func (r *feedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	defer r.s.lock()()
	r.s.d.feedback[feedbackKey(f.SessionID, f.StudentID)] = cloneFeedback(f)
	return nil
}

func (r *feedbackRepo) Find(ctx context.Context, sessionID, studentID string) (*model.Feedback, error) {
	defer r.s.lock()()
	return cloneFeedback(r.s.d.feedback[feedbackKey(sessionID, studentID)]), nil
}

func (r *feedbackRepo) Update(ctx context.Context, f *model.Feedback) error {
	defer r.s.lock()()
	r.s.d.feedback[feedbackKey(f.SessionID, f.StudentID)] = cloneFeedback(f)
	return nil
}

func (r *feedbackRepo) Delete(ctx context.Context, sessionID, studentID string) (bool, error) {
	defer r.s.lock()()
	key := feedbackKey(sessionID, studentID)
	if _, ok := r.s.d.feedback[key]; !ok {
		return false, nil
	}
	delete(r.s.d.feedback, key)
	return true, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	defer r.s.lock()()
	return r.s.d.users[id], nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	defer r.s.lock()()
	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
