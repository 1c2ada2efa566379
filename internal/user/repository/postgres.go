package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"daily-logger/internal/user/domain"
)

const (
	pgUniqueViolation = "23505"

	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const userColumns = `id, username, full_name, email, password_hash, refresh_token_hash, created_at, updated_at`

// PostgresRepository is the Postgres implementation of Repository.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// List returns all users ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Create persists the user and sets its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, full_name, email, password_hash)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		u.Username, u.FullName, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapUniqueErr(err)
	}
	u.CreatedAt, u.UpdatedAt = asUTC(u.CreatedAt), asUTC(u.UpdatedAt)
	return nil
}

// UpdateProfile updates username, full name and email of an existing user.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET username = $1, full_name = $2, email = $3, updated_at = (now() AT TIME ZONE 'utc')
		 WHERE id = $4 RETURNING updated_at`,
		u.Username, u.FullName, u.Email, u.ID,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return mapUniqueErr(err)
	}
	u.UpdatedAt = asUTC(u.UpdatedAt)
	return nil
}

// SetRefreshTokenHash sets or, for an empty hash, clears the stored refresh token hash.
func (r *PostgresRepository) SetRefreshTokenHash(ctx context.Context, id int64, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = $1, updated_at = (now() AT TIME ZONE 'utc') WHERE id = $2`,
		sql.NullString{String: hash, Valid: hash != ""}, id)
	return err
}

// SwapRefreshTokenHash rotates the stored hash with a compare-and-set, so two concurrent
// refreshes with the same token cannot both succeed.
func (r *PostgresRepository) SwapRefreshTokenHash(ctx context.Context, id int64, oldHash, newHash string) (bool, error) {
	if oldHash == "" {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = $1, updated_at = (now() AT TIME ZONE 'utc')
		 WHERE id = $2 AND refresh_token_hash = $3`,
		sql.NullString{String: newHash, Valid: newHash != ""}, id, oldHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteWithData deletes the user's tasks, summaries and sleep sessions, then the user row.
func (r *PostgresRepository) DeleteWithData(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM tasks WHERE user_id = $1`,
		`DELETE FROM summaries WHERE user_id = $1`,
		`DELETE FROM sleep_sessions WHERE user_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return false, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (*domain.User, error) {
	var (
		u       domain.User
		refresh sql.NullString
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash, &refresh, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.RefreshTokenHash = refresh.String
	u.CreatedAt, u.UpdatedAt = asUTC(u.CreatedAt), asUTC(u.UpdatedAt)
	return &u, nil
}

func asUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// mapUniqueErr reports which unique column a write collided with.
func mapUniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return domain.ErrUsernameTaken
		case emailConstraint:
			return domain.ErrEmailTaken
		}
	}
	return err
}
