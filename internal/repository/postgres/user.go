package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tutorbook/internal/model"
)

// UserRepo only reads; accounts are owned by the identity service.
type UserRepo struct {
	db DB
}

const userColumns = `id, email, name, role, phone, gender, dob, faculty,
	expertise, bio, office_room, created_at, updated_at`

func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	if len(ids) == 0 {
		return map[string]*model.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]*model.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u         model.User
		phone     *string
		gender    *string
		dob       *string
		faculty   *string
		expertise []string
		bio       *string
		office    *string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&phone,
		&gender,
		&dob,
		&faculty,
		&expertise,
		&bio,
		&office,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Phone = deref(phone)
	u.Gender = deref(gender)
	u.DOB = deref(dob)
	u.Faculty = deref(faculty)
	if u.Role == model.RoleTutor {
		u.Profile = &model.TutorProfile{
			Expertise:  expertise,
			Bio:        deref(bio),
			OfficeRoom: deref(office),
		}
	}
	return &u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
