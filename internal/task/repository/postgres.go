// Package repository persists tasks in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"daily-logger/internal/task/domain"
)

const taskColumns = `id, user_id, title, body, status, due_date, created_at, updated_at`

// PostgresRepository is the Postgres implementation of Repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts t and sets its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, body, status, due_date) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Title, t.Body, string(t.Status), t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}
	t.CreatedAt = asUTC(t.CreatedAt)
	t.UpdatedAt = asUTC(t.UpdatedAt)
	return nil
}

// GetByID returns the user's task, or nil if none exists.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser returns the user's tasks ordered by due date, then id.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY due_date, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes t's fields and reports whether the task existed.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) (bool, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = $1, body = $2, status = $3, due_date = $4, updated_at = (now() AT TIME ZONE 'utc')
		 WHERE id = $5 AND user_id = $6 RETURNING updated_at`,
		t.Title, t.Body, string(t.Status), t.DueDate, t.ID, t.UserID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	t.UpdatedAt = asUTC(t.UpdatedAt)
	return true, nil
}

// Delete reports whether a task was removed.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (domain.Task, error) {
	var t domain.Task
	var status string
	if err := sc.Scan(&t.ID, &t.UserID, &t.Title, &t.Body, &status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.Status(status)
	t.DueDate = asUTC(t.DueDate)
	t.CreatedAt = asUTC(t.CreatedAt)
	t.UpdatedAt = asUTC(t.UpdatedAt)
	return t, nil
}

func asUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
