package repository

import (
	"context"

	"daily-logger/internal/task/domain"
)

// Repository defines persistence for tasks. Every call is scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Task, error)
	// Update writes t's mutable fields. Returns false when no row matched.
	Update(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}
