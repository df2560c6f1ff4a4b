package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"tutorbook/internal/model"
)

type RegistrationRepo struct {
	db DB
}

const registrationColumns = `id, session_id, student_id, status, created_at, updated_at`

func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	query := `
		INSERT INTO registrations (id, session_id, student_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query, reg.ID, reg.SessionID, reg.StudentID, reg.Status, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

func (r *RegistrationRepo) FindJoined(ctx context.Context, sessionID, studentID string) (*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE session_id = $1 AND student_id = $2 AND status = 'JOINED'
		LIMIT 1
	`

	reg, err := scanRegistration(r.db.QueryRow(ctx, query, sessionID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepo) JoinedBySession(ctx context.Context, sessionID string) ([]*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE session_id = $1 AND status = 'JOINED'
		ORDER BY created_at
	`
	return r.queryMany(ctx, query, sessionID)
}

func (r *RegistrationRepo) JoinedByStudent(ctx context.Context, studentID string) ([]*model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE student_id = $1 AND status = 'JOINED'
		ORDER BY created_at
	`
	return r.queryMany(ctx, query, studentID)
}

func (r *RegistrationRepo) Update(ctx context.Context, reg *model.Registration) error {
	query := `
		UPDATE registrations
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.db.Exec(ctx, query, reg.Status, reg.UpdatedAt, reg.ID)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update registration: no such registration %s", reg.ID)
	}

	return nil
}

func (r *RegistrationRepo) CancelBySession(ctx context.Context, sessionID string, at time.Time) (int64, error) {
	query := `
		UPDATE registrations
		SET status = 'CANCELLED', updated_at = $2
		WHERE session_id = $1 AND status = 'JOINED'
	`

	tag, err := r.db.Exec(ctx, query, sessionID, at)
	if err != nil {
		return 0, fmt.Errorf("cancel registrations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RegistrationRepo) queryMany(ctx context.Context, query string, args ...any) ([]*model.Registration, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var regs []*model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(
		&reg.ID,
		&reg.SessionID,
		&reg.StudentID,
		&reg.Status,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
