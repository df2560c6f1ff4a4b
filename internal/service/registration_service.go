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

// RegistrationService owns the join/cancel lifecycle and keeps the session
// counter in lockstep with it. Every mutation runs in one Atomic unit with
// the session record locked, so two requests racing for the last seat
// cannot both pass the capacity check.
type RegistrationService struct {
	store  repository.Store
	hours  schedule.Hours
	logger *zap.Logger
}

func NewRegistrationService(store repository.Store, hours schedule.Hours, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{store: store, hours: hours, logger: logger}
}

func (s *RegistrationService) Register(ctx context.Context, sessionID, studentID string) (*model.Registration, error) {
	var reg *model.Registration
	err := s.store.Atomic(ctx, func(st repository.Store) error {
		sess, err := st.Sessions().GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return apperr.New(apperr.CodeNotFound, "session not found")
		}
		// FULL gets its own code so callers can tell a packed session
		// from a cancelled or completed one.
		if sess.Status == model.SessionStatusFull {
			return apperr.New(apperr.CodeSessionFull, "the session is full")
		}
		if sess.Status != model.SessionStatusOpen {
			return apperr.New(apperr.CodeSessionNotOpen, "the session is not open for registration")
		}

		existing, err := st.Registrations().FindJoined(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.New(apperr.CodeAlreadyRegistered, "you are already registered for this session")
		}

		if sess.CurrentCount >= sess.Capacity {
			return apperr.New(apperr.CodeSessionFull, "the session is full")
		}

		// Sessions written before a rule change could sit outside the
		// allowed window; never let them accumulate registrations.
		if err := s.hours.Check(sess.StartAt, sess.EndAt); err != nil {
			return apperr.New(apperr.CodeValidation, err.Error())
		}

		others, err := st.Sessions().ActiveByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		window := schedule.SessionInterval(sess)
		if c := schedule.FindConflict(window, others, sess.ID); c != nil {
			return apperr.New(apperr.CodeScheduleConflict, "you already have a session in this time range").WithDetails(c)
		}

		now := time.Now().UTC()
		reg = &model.Registration{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			StudentID: studentID,
			Status:    model.RegistrationStatusJoined,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.Registrations().Create(ctx, reg); err != nil {
			return err
		}

		sess.CurrentCount++
		sess.RefreshStatus()
		sess.UpdatedAt = now
		return st.Sessions().Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student registered",
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
		zap.String("registration_id", reg.ID),
	)
	return reg, nil
}

func (s *RegistrationService) Unregister(ctx context.Context, sessionID, studentID string) error {
	err := s.store.Atomic(ctx, func(st repository.Store) error {
		sess, err := st.Sessions().GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}

		reg, err := st.Registrations().FindJoined(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if reg == nil {
			return apperr.New(apperr.CodeNotFound, "registration not found")
		}

		now := time.Now().UTC()
		reg.Status = model.RegistrationStatusCancelled
		reg.UpdatedAt = now
		if err := st.Registrations().Update(ctx, reg); err != nil {
			return err
		}

		if sess == nil {
			return nil
		}
		if sess.CurrentCount > 0 {
			sess.CurrentCount--
		}
		sess.RefreshStatus()
		sess.UpdatedAt = now
		return st.Sessions().Update(ctx, sess)
	})
	if err != nil {
		return err
	}

	s.logger.Info("registration cancelled",
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
	)
	return nil
}

// ListMine returns the student's JOINED registrations enriched with their
// sessions and tutor summaries.
func (s *RegistrationService) ListMine(ctx context.Context, studentID string) ([]*model.Registration, error) {
	regs, err := s.store.Registrations().JoinedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	for _, reg := range regs {
		sess, err := s.store.Sessions().GetByID(ctx, reg.SessionID)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			continue
		}
		tutor, err := s.store.Users().GetByID(ctx, sess.TutorID)
		if err != nil {
			return nil, err
		}
		if tutor != nil {
			sess.Tutor = tutor.Summary(false)
		}
		reg.Session = sess
	}

	if regs == nil {
		regs = []*model.Registration{}
	}
	return regs, nil
}

// ListForSession returns the JOINED registrations of a session with
// student info, for the owning tutor only.
func (s *RegistrationService) ListForSession(ctx context.Context, sessionID, tutorID string) ([]*model.Registration, error) {
	sess, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.New(apperr.CodeNotFound, "session not found")
	}
	if sess.TutorID != tutorID {
		return nil, apperr.New(apperr.CodeForbidden, "you do not own this session")
	}

	regs, err := s.store.Registrations().JoinedBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.StudentID)
	}
	students, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, reg := range regs {
		reg.Student = students[reg.StudentID]
	}

	if regs == nil {
		regs = []*model.Registration{}
	}
	return regs, nil
}
