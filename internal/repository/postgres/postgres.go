// Package postgres implements repository.Store on top of a pgx pool.
// Atomic units are real transactions; the register/unregister paths lock
// the session row so counter updates cannot interleave.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorbook/internal/repository"
)

// DB is the querying surface shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pool and verifies the database answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
	db   DB
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Sessions() repository.SessionRepository           { return &SessionRepo{db: s.db} }
func (s *Store) Registrations() repository.RegistrationRepository { return &RegistrationRepo{db: s.db} }
func (s *Store) Feedback() repository.FeedbackRepository          { return &FeedbackRepo{db: s.db} }
func (s *Store) Users() repository.UserRepository                 { return &UserRepo{db: s.db} }

// Atomic runs fn inside a transaction. Nested calls join the transaction
// already in flight.
func (s *Store) Atomic(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, tx: tx, db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
