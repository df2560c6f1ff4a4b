package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tutorbook/internal/apperr"
	"tutorbook/internal/model"
	"tutorbook/internal/repository"
)

type SessionRepo struct {
	db DB
}

const sessionColumns = `id, tutor_id, title, description, mode, room, url, start_at, end_at,
	capacity, current_count, status, subjects, created_at, updated_at`

func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (id, tutor_id, title, description, mode, room, url, start_at, end_at,
			capacity, current_count, status, subjects, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(
		ctx, query,
		s.ID,
		s.TutorID,
		s.Title,
		s.Description,
		s.Mode,
		s.Room,
		s.URL,
		s.StartAt,
		s.EndAt,
		s.Capacity,
		s.CurrentCount,
		s.Status,
		s.Subjects,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if ce := conflictFromErr(err); ce != nil {
			return ce
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// conflictFromErr translates a window exclusion violation into the conflict
// error the service would have produced had it seen the other session. The
// conflict checks run first, so this only fires when two transactions race
// past them.
func conflictFromErr(err error) error {
	var pgErr *pgconn.PgError
	// 23P01 exclusion_violation
	if !errors.As(err, &pgErr) || pgErr.Code != "23P01" {
		return nil
	}
	switch pgErr.ConstraintName {
	case "sessions_tutor_window_excl":
		return apperr.New(apperr.CodeScheduleConflict, "you already have a session in this time range")
	case "sessions_room_window_excl":
		return apperr.New(apperr.CodeRoomConflict, "the room is already booked in this time range")
	}
	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *SessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *SessionRepo) getOne(ctx context.Context, query string, args ...any) (*model.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	query := `
		UPDATE sessions
		SET title = $1, description = $2, mode = $3, room = $4, url = $5,
			start_at = $6, end_at = $7, capacity = $8, current_count = $9,
			status = $10, subjects = $11, updated_at = $12
		WHERE id = $13
	`

	tag, err := r.db.Exec(
		ctx, query,
		s.Title,
		s.Description,
		s.Mode,
		s.Room,
		s.URL,
		s.StartAt,
		s.EndAt,
		s.Capacity,
		s.CurrentCount,
		s.Status,
		s.Subjects,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if ce := conflictFromErr(err); ce != nil {
			return ce
		}
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update session: no such session %s", s.ID)
	}

	return nil
}

func (r *SessionRepo) List(ctx context.Context, f repository.SessionFilter) ([]*model.Session, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.TutorID != "" {
		conds = append(conds, "tutor_id = "+arg(f.TutorID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(statuses)+")")
	}
	if f.Subject != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM unnest(subjects) subj WHERE subj ILIKE "+arg("%"+f.Subject+"%")+")")
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_at"

	return r.queryMany(ctx, query, args...)
}

func (r *SessionRepo) ActiveByTutor(ctx context.Context, tutorID string) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE tutor_id = $1 AND status <> 'CANCELLED'
		ORDER BY start_at
	`
	return r.queryMany(ctx, query, tutorID)
}

func (r *SessionRepo) ActiveByRoom(ctx context.Context, room string) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE mode = 'OFFLINE' AND room = $1 AND status <> 'CANCELLED'
		ORDER BY start_at
	`
	return r.queryMany(ctx, query, room)
}

func (r *SessionRepo) ActiveByStudent(ctx context.Context, studentID string) ([]*model.Session, error) {
	query := `
		SELECT s.id, s.tutor_id, s.title, s.description, s.mode, s.room, s.url, s.start_at, s.end_at,
			s.capacity, s.current_count, s.status, s.subjects, s.created_at, s.updated_at
		FROM sessions s
		JOIN registrations r ON r.session_id = s.id
		WHERE r.student_id = $1 AND r.status = 'JOINED' AND s.status <> 'CANCELLED'
		ORDER BY s.start_at
	`
	return r.queryMany(ctx, query, studentID)
}

func (r *SessionRepo) queryMany(ctx context.Context, query string, args ...any) ([]*model.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID,
		&s.TutorID,
		&s.Title,
		&s.Description,
		&s.Mode,
		&s.Room,
		&s.URL,
		&s.StartAt,
		&s.EndAt,
		&s.Capacity,
		&s.CurrentCount,
		&s.Status,
		&s.Subjects,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
