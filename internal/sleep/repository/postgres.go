// Package repository persists sleep sessions in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"daily-logger/internal/sleep/domain"
)

const (
	pgExclusionViolation = "23P01"
	pgCheckViolation     = "23514"
)

const sessionColumns = `id, user_id, start_time, end_time, created_at, updated_at`

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresRepository is the Postgres implementation of Repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a sleep repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user's session with the given id, or nil if none exists.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Session, error) {
	return getByID(ctx, r.db, userID, id)
}

// ListByUser returns all sessions of the user ordered by start time.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	return listByUser(ctx, r.db, userID)
}

// Delete removes the user's session. Returns false when no row matched.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sleep_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WithUserLock begins a transaction, locks the user row with SELECT ... FOR UPDATE, and runs fn.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *PostgresRepository) WithUserLock(ctx context.Context, userID int64, fn func(tx Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	var locked int64
	err = sqlTx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}

	if err := fn(&postgresTx{q: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type postgresTx struct {
	q queryer
}

func (t *postgresTx) ListByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	return listByUser(ctx, t.q, userID)
}

func (t *postgresTx) GetByID(ctx context.Context, userID, id int64) (*domain.Session, error) {
	return getByID(ctx, t.q, userID, id)
}

func (t *postgresTx) Insert(ctx context.Context, s *domain.Session) error {
	err := t.q.QueryRowContext(ctx,
		`INSERT INTO sleep_sessions (user_id, start_time, end_time) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.UserID, s.Start, s.End,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return nil
}

func (t *postgresTx) Update(ctx context.Context, s *domain.Session) error {
	err := t.q.QueryRowContext(ctx,
		`UPDATE sleep_sessions SET start_time = $1, end_time = $2, updated_at = (now() AT TIME ZONE 'utc')
		 WHERE id = $3 AND user_id = $4 RETURNING updated_at`,
		s.Start, s.End, s.ID, s.UserID,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return mapWriteErr(err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return nil
}

func getByID(ctx context.Context, q queryer, userID, id int64) (*domain.Session, error) {
	row := q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sleep_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func listByUser(ctx context.Context, q queryer, userID int64) ([]domain.Session, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sleep_sessions WHERE user_id = $1 ORDER BY start_time`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (domain.Session, error) {
	var s domain.Session
	if err := sc.Scan(&s.ID, &s.UserID, &s.Start, &s.End, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.Session{}, err
	}
	// TIMESTAMP columns come back without a zone; they are stored as UTC.
	s.Start = asUTC(s.Start)
	s.End = asUTC(s.End)
	s.CreatedAt = asUTC(s.CreatedAt)
	s.UpdatedAt = asUTC(s.UpdatedAt)
	return s, nil
}

func asUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// mapWriteErr turns constraint violations into validation errors.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return domain.OverlapError()
		case pgCheckViolation:
			return &domain.ValidationError{Kind: domain.ErrInvalidRange, Reason: domain.ReasonInvalidRange}
		}
	}
	return err
}
