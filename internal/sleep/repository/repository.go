package repository

import (
	"context"
	"errors"

	"daily-logger/internal/sleep/domain"
)

// ErrUserNotFound is returned by WithUserLock when the owning user row does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned by Tx.Update when the session does not exist for the user.
var ErrSessionNotFound = errors.New("sleep session not found")

// Repository defines persistence for sleep sessions. Reads are scoped to the owning user:
// a session of another user is reported as not found.
type Repository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Session, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Session, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
	// WithUserLock runs fn in a transaction holding a row lock on the user row, so that
	// concurrent writes for one user serialize between reading existing sessions and writing.
	WithUserLock(ctx context.Context, userID int64, fn func(tx Tx) error) error
}

// Tx is the write-side view of the repository inside WithUserLock.
type Tx interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Session, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.Session, error)
	// Insert stores s and sets its ID and timestamps.
	Insert(ctx context.Context, s *domain.Session) error
	// Update writes s's bounds and refreshes UpdatedAt.
	Update(ctx context.Context, s *domain.Session) error
}
