package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tutorbook/internal/model"
)

type FeedbackRepo struct {
	db DB
}

func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	query := `
		INSERT INTO feedback (id, session_id, student_id, rating, comment, question, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		ctx, query,
		f.ID,
		f.SessionID,
		f.StudentID,
		f.Rating,
		f.Comment,
		f.Question,
		f.State,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}

	return nil
}

func (r *FeedbackRepo) Find(ctx context.Context, sessionID, studentID string) (*model.Feedback, error) {
	query := `
		SELECT id, session_id, student_id, rating, comment, question, state, created_at, updated_at
		FROM feedback
		WHERE session_id = $1 AND student_id = $2
	`

	var f model.Feedback
	err := r.db.QueryRow(ctx, query, sessionID, studentID).Scan(
		&f.ID,
		&f.SessionID,
		&f.StudentID,
		&f.Rating,
		&f.Comment,
		&f.Question,
		&f.State,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find feedback: %w", err)
	}

	return &f, nil
}

func (r *FeedbackRepo) Update(ctx context.Context, f *model.Feedback) error {
	query := `
		UPDATE feedback
		SET rating = $1, comment = $2, question = $3, state = $4, updated_at = $5
		WHERE id = $6
	`

	tag, err := r.db.Exec(ctx, query, f.Rating, f.Comment, f.Question, f.State, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update feedback: no such feedback %s", f.ID)
	}

	return nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, sessionID, studentID string) (bool, error) {
	query := `DELETE FROM feedback WHERE session_id = $1 AND student_id = $2`

	tag, err := r.db.Exec(ctx, query, sessionID, studentID)
	if err != nil {
		return false, fmt.Errorf("delete feedback: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
