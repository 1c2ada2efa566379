// Package repository persists journal logs in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"daily-logger/internal/journal/domain"
)

const (
	pgUniqueViolation  = "23505"
	userDateConstraint = "summaries_user_date_unique"
)

const logColumns = `id, user_id, summary, rating, date, created_at, updated_at`

// PostgresRepository is the Postgres implementation of Repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a journal repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts l and sets its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, l *domain.Log) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO summaries (user_id, summary, rating, date) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		l.UserID, l.Summary, l.Rating, l.Date,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	l.CreatedAt = asUTC(l.CreatedAt)
	l.UpdatedAt = asUTC(l.UpdatedAt)
	return nil
}

// GetByID returns the user's log, or nil if none exists.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Log, error) {
	return r.getOne(ctx, `SELECT `+logColumns+` FROM summaries WHERE id = $1 AND user_id = $2`, id, userID)
}

// GetByDate returns the user's log for date, or nil if none exists.
func (r *PostgresRepository) GetByDate(ctx context.Context, userID int64, date time.Time) (*domain.Log, error) {
	return r.getOne(ctx, `SELECT `+logColumns+` FROM summaries WHERE user_id = $1 AND date = $2`, userID, date)
}

// ListByUser returns the user's logs newest date first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Log, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+logColumns+` FROM summaries WHERE user_id = $1 ORDER BY date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListRatings returns the user's date and rating pairs in date order.
func (r *PostgresRepository) ListRatings(ctx context.Context, userID int64) ([]domain.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, rating FROM summaries WHERE user_id = $1 ORDER BY date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.Date, &rt.Rating); err != nil {
			return nil, err
		}
		rt.Date = asUTC(rt.Date)
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Update writes l's fields and reports whether the log existed.
func (r *PostgresRepository) Update(ctx context.Context, l *domain.Log) (bool, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE summaries SET summary = $1, rating = $2, updated_at = (now() AT TIME ZONE 'utc')
		 WHERE id = $3 AND user_id = $4 RETURNING updated_at`,
		l.Summary, l.Rating, l.ID, l.UserID,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	l.UpdatedAt = asUTC(l.UpdatedAt)
	return true, nil
}

// Delete reports whether a log was removed.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Log, error) {
	l, err := scanLog(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(sc scanner) (domain.Log, error) {
	var l domain.Log
	if err := sc.Scan(&l.ID, &l.UserID, &l.Summary, &l.Rating, &l.Date, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return domain.Log{}, err
	}
	l.Date = asUTC(l.Date)
	l.CreatedAt = asUTC(l.CreatedAt)
	l.UpdatedAt = asUTC(l.UpdatedAt)
	return l, nil
}

func asUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == userDateConstraint {
		return ErrDuplicateDate
	}
	return err
}
