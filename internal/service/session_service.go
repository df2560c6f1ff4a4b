package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorbook/internal/apperr"
	"tutorbook/internal/model"
	"tutorbook/internal/repository"
	"tutorbook/internal/schedule"
)

// SessionService owns the session lifecycle: creation, partial update,
// soft-cancel, and the listing/detail reads. All time and conflict rules
// are enforced here before anything is written.
type SessionService struct {
	store  repository.Store
	hours  schedule.Hours
	logger *zap.Logger
}

func NewSessionService(store repository.Store, hours schedule.Hours, logger *zap.Logger) *SessionService {
	return &SessionService{store: store, hours: hours, logger: logger}
}

type CreateSessionInput struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Mode        model.SessionMode `json:"mode" validate:"required,oneof=ONLINE OFFLINE"`
	Room        string            `json:"room"`
	URL         string            `json:"url"`
	StartAt     time.Time         `json:"startAt" validate:"required"`
	EndAt       time.Time         `json:"endAt" validate:"required"`
	Capacity    int               `json:"capacity" validate:"required,min=1"`
	Subjects    []string          `json:"subjects"`
}

// UpdateSessionInput carries a partial update: nil means "keep the stored
// value". ID, tutor and the registration counter are never caller-supplied.
type UpdateSessionInput struct {
	Title       *string            `json:"title" validate:"omitempty,min=1"`
	Description *string            `json:"description"`
	Mode        *model.SessionMode `json:"mode" validate:"omitempty,oneof=ONLINE OFFLINE"`
	Room        *string            `json:"room"`
	URL         *string            `json:"url"`
	StartAt     *time.Time         `json:"startAt"`
	EndAt       *time.Time         `json:"endAt"`
	Capacity    *int               `json:"capacity" validate:"omitempty,min=1"`
	Subjects    []string           `json:"subjects"`
}

// ListSessionsQuery mirrors the query parameters of the listing endpoint.
type ListSessionsQuery struct {
	Mine     bool
	Statuses []model.SessionStatus
	Subject  string
	TutorID  string
}

func (s *SessionService) Create(ctx context.Context, tutorID string, in CreateSessionInput) (*model.Session, error) {
	if in.Title == "" || in.Capacity < 1 {
		return nil, apperr.New(apperr.CodeValidation, "missing required fields")
	}
	if err := s.hours.Check(in.StartAt, in.EndAt); err != nil {
		return nil, apperr.New(apperr.CodeValidation, err.Error())
	}

	room, url, err := modeFields(in.Mode, in.Room, in.URL)
	if err != nil {
		return nil, err
	}

	var created *model.Session
	err = s.store.Atomic(ctx, func(st repository.Store) error {
		window := schedule.Interval{Start: in.StartAt, End: in.EndAt}

		owned, err := st.Sessions().ActiveByTutor(ctx, tutorID)
		if err != nil {
			return err
		}
		if c := schedule.FindConflict(window, owned, ""); c != nil {
			return apperr.New(apperr.CodeScheduleConflict, "you already have a session in this time range").WithDetails(c)
		}

		if in.Mode == model.ModeOffline {
			inRoom, err := st.Sessions().ActiveByRoom(ctx, *room)
			if err != nil {
				return err
			}
			if c := schedule.FindConflict(window, inRoom, ""); c != nil {
				return apperr.New(apperr.CodeRoomConflict, "the room is already booked in this time range").WithDetails(c)
			}
		}

		now := time.Now().UTC()
		created = &model.Session{
			ID:           uuid.NewString(),
			TutorID:      tutorID,
			Title:        in.Title,
			Description:  in.Description,
			Mode:         in.Mode,
			Room:         room,
			URL:          url,
			StartAt:      in.StartAt,
			EndAt:        in.EndAt,
			Capacity:     in.Capacity,
			CurrentCount: 0,
			Status:       model.SessionStatusOpen,
			Subjects:     subjectsOrEmpty(in.Subjects),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return st.Sessions().Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("session_id", created.ID),
		zap.String("tutor_id", tutorID),
		zap.Time("start_at", created.StartAt),
	)
	return created, nil
}

func (s *SessionService) Update(ctx context.Context, sessionID, tutorID string, in UpdateSessionInput) (*model.Session, error) {
	var updated *model.Session
	err := s.store.Atomic(ctx, func(st repository.Store) error {
		sess, err := st.Sessions().GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return apperr.New(apperr.CodeNotFound, "session not found")
		}
		if sess.TutorID != tutorID {
			return apperr.New(apperr.CodeForbidden, "you do not own this session")
		}

		merged := *sess
		applyUpdate(&merged, in)

		if in.StartAt != nil || in.EndAt != nil {
			if err := s.hours.Check(merged.StartAt, merged.EndAt); err != nil {
				return apperr.New(apperr.CodeValidation, err.Error())
			}
		}

		// The counter must never exceed capacity, so shrinking below the
		// live registration count is not a valid update.
		if merged.Capacity < merged.CurrentCount {
			return apperr.New(apperr.CodeValidation, "capacity cannot drop below the current registration count")
		}

		room, url, err := modeFields(merged.Mode, deref(merged.Room), deref(merged.URL))
		if err != nil {
			return err
		}
		merged.Room = room
		merged.URL = url

		window := schedule.Interval{Start: merged.StartAt, End: merged.EndAt}

		owned, err := st.Sessions().ActiveByTutor(ctx, tutorID)
		if err != nil {
			return err
		}
		if c := schedule.FindConflict(window, owned, sess.ID); c != nil {
			return apperr.New(apperr.CodeScheduleConflict, "you already have a session in this time range").WithDetails(c)
		}

		if merged.Mode == model.ModeOffline {
			inRoom, err := st.Sessions().ActiveByRoom(ctx, *room)
			if err != nil {
				return err
			}
			if c := schedule.FindConflict(window, inRoom, sess.ID); c != nil {
				return apperr.New(apperr.CodeRoomConflict, "the room is already booked in this time range").WithDetails(c)
			}
		}

		// A capacity change can move the session across the FULL line.
		merged.RefreshStatus()
		merged.UpdatedAt = time.Now().UTC()

		if err := st.Sessions().Update(ctx, &merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session updated",
		zap.String("session_id", sessionID),
		zap.String("tutor_id", tutorID),
	)
	return updated, nil
}

// Cancel soft-deletes a session and cascades the cancellation onto its
// JOINED registrations. The counter is left as is: the session is terminal.
func (s *SessionService) Cancel(ctx context.Context, sessionID, tutorID string) error {
	var cancelled int64
	err := s.store.Atomic(ctx, func(st repository.Store) error {
		sess, err := st.Sessions().GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return apperr.New(apperr.CodeNotFound, "session not found")
		}
		if sess.TutorID != tutorID {
			return apperr.New(apperr.CodeForbidden, "you do not own this session")
		}

		now := time.Now().UTC()
		sess.Status = model.SessionStatusCancelled
		sess.UpdatedAt = now
		if err := st.Sessions().Update(ctx, sess); err != nil {
			return err
		}

		cancelled, err = st.Registrations().CancelBySession(ctx, sessionID, now)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("session cancelled",
		zap.String("session_id", sessionID),
		zap.String("tutor_id", tutorID),
		zap.Int64("registrations_cancelled", cancelled),
	)
	return nil
}

// List returns sessions matching the query, each enriched with a tutor
// summary the way the listing page displays them.
func (s *SessionService) List(ctx context.Context, q ListSessionsQuery) ([]*model.Session, error) {
	filter := repository.SessionFilter{
		TutorID:  q.TutorID,
		Statuses: q.Statuses,
		Subject:  q.Subject,
	}

	sessions, err := s.store.Sessions().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.TutorID)
	}
	tutors, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if t, ok := tutors[sess.TutorID]; ok {
			sess.Tutor = t.Summary(false)
		}
	}

	if sessions == nil {
		sessions = []*model.Session{}
	}
	return sessions, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.New(apperr.CodeNotFound, "session not found")
	}

	tutor, err := s.store.Users().GetByID(ctx, sess.TutorID)
	if err != nil {
		return nil, err
	}
	if tutor != nil {
		sess.Tutor = tutor.Summary(true)
	}
	return sess, nil
}

// WeekFor collects the sessions shown on a user's weekly board: owned
// sessions for tutors, registered ones for students.
func (s *SessionService) WeekFor(ctx context.Context, userID, role string) ([]*model.Session, error) {
	if role == model.RoleTutor {
		return s.store.Sessions().ActiveByTutor(ctx, userID)
	}
	return s.store.Sessions().ActiveByStudent(ctx, userID)
}

// modeFields validates the mode-specific field and nils out the other one,
// so an OFFLINE session never carries a stale url and vice versa.
func modeFields(mode model.SessionMode, room, url string) (*string, *string, error) {
	switch mode {
	case model.ModeOffline:
		if room == "" {
			return nil, nil, apperr.New(apperr.CodeValidation, "offline sessions require a room")
		}
		return &room, nil, nil
	case model.ModeOnline:
		if url == "" {
			return nil, nil, apperr.New(apperr.CodeValidation, "online sessions require a meeting url")
		}
		return nil, &url, nil
	default:
		return nil, nil, apperr.New(apperr.CodeValidation, "mode must be ONLINE or OFFLINE")
	}
}

func applyUpdate(sess *model.Session, in UpdateSessionInput) {
	if in.Title != nil {
		sess.Title = *in.Title
	}
	if in.Description != nil {
		sess.Description = *in.Description
	}
	if in.Mode != nil {
		sess.Mode = *in.Mode
	}
	if in.Room != nil {
		sess.Room = in.Room
	}
	if in.URL != nil {
		sess.URL = in.URL
	}
	if in.StartAt != nil {
		sess.StartAt = *in.StartAt
	}
	if in.EndAt != nil {
		sess.EndAt = *in.EndAt
	}
	if in.Capacity != nil {
		sess.Capacity = *in.Capacity
	}
	if in.Subjects != nil {
		sess.Subjects = in.Subjects
	}
}

func subjectsOrEmpty(subjects []string) []string {
	if subjects == nil {
		return []string{}
	}
	return subjects
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
