package repository

import (
	"context"
	"errors"
	"time"

	"daily-logger/internal/journal/domain"
)

// ErrDuplicateDate is returned by Create when the user already has a log for that date.
var ErrDuplicateDate = errors.New("log for this date already exists")

// Repository persists journal logs. Summary values passed in and returned are the stored
// (encrypted) form; callers own encryption. Every call is scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, l *domain.Log) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Log, error)
	GetByDate(ctx context.Context, userID int64, date time.Time) (*domain.Log, error)
	// ListByUser returns the user's logs newest date first.
	ListByUser(ctx context.Context, userID int64) ([]domain.Log, error)
	ListRatings(ctx context.Context, userID int64) ([]domain.Rating, error)
	// Update writes l's summary and rating. Returns false when no row matched.
	Update(ctx context.Context, l *domain.Log) (bool, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}
