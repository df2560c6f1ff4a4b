package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorbook/internal/apperr"
	"tutorbook/internal/model"
	"tutorbook/internal/repository"
)

// FeedbackService maintains the single feedback record a student keeps per
// session, with draft/saved semantics.
type FeedbackService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewFeedbackService(store repository.Store, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{store: store, logger: logger}
}

// FeedbackInput is a partial upsert: nil fields keep the stored value.
type FeedbackInput struct {
	Rating   *int                 `json:"rating" validate:"omitempty,min=0,max=5"`
	Comment  *string              `json:"comment"`
	Question *string              `json:"question"`
	State    *model.FeedbackState `json:"state" validate:"omitempty,oneof=DRAFT SAVED"`
}

// Submit creates or merges the student's feedback for a session. Saving
// (state SAVED) requires a nonzero rating in the submitting request.
func (s *FeedbackService) Submit(ctx context.Context, sessionID, studentID string, in FeedbackInput) (*model.Feedback, error) {
	if in.State != nil && *in.State == model.FeedbackStateSaved {
		if in.Rating == nil || *in.Rating == 0 {
			return nil, apperr.New(apperr.CodeValidation, "please choose a satisfaction level")
		}
	}

	var saved *model.Feedback
	err := s.store.Atomic(ctx, func(st repository.Store) error {
		reg, err := st.Registrations().FindJoined(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if reg == nil {
			return apperr.New(apperr.CodeNotRegistered, "you are not registered for this session")
		}

		now := time.Now().UTC()

		fb, err := st.Feedback().Find(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if fb != nil {
			if in.Rating != nil {
				fb.Rating = *in.Rating
			}
			if in.Comment != nil {
				fb.Comment = *in.Comment
			}
			if in.Question != nil {
				fb.Question = *in.Question
			}
			if in.State != nil {
				fb.State = *in.State
			}
			fb.UpdatedAt = now
			if err := st.Feedback().Update(ctx, fb); err != nil {
				return err
			}
			saved = fb
			return nil
		}

		fb = &model.Feedback{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			StudentID: studentID,
			State:     model.FeedbackStateDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if in.Rating != nil {
			fb.Rating = *in.Rating
		}
		if in.Comment != nil {
			fb.Comment = *in.Comment
		}
		if in.Question != nil {
			fb.Question = *in.Question
		}
		if in.State != nil {
			fb.State = *in.State
		}
		if err := st.Feedback().Create(ctx, fb); err != nil {
			return err
		}
		saved = fb
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback submitted",
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
		zap.String("state", string(saved.State)),
	)
	return saved, nil
}

func (s *FeedbackService) GetMine(ctx context.Context, sessionID, studentID string) (*model.Feedback, error) {
	fb, err := s.store.Feedback().Find(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if fb == nil {
		return nil, apperr.New(apperr.CodeNotFound, "no feedback yet")
	}
	return fb, nil
}

func (s *FeedbackService) Delete(ctx context.Context, sessionID, studentID string) error {
	ok, err := s.store.Feedback().Delete(ctx, sessionID, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.CodeNotFound, "feedback not found")
	}

	s.logger.Info("feedback deleted",
		zap.String("session_id", sessionID),
		zap.String("student_id", studentID),
	)
	return nil
}
