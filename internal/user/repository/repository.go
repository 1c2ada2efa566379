package repository

import (
	"context"

	"daily-logger/internal/user/domain"
)

// Repository defines persistence for users. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Create inserts u and sets its ID and timestamps. Unique violations map to
	// domain.ErrUsernameTaken or domain.ErrEmailTaken.
	Create(ctx context.Context, u *domain.User) error
	// UpdateProfile writes username, full name and email.
	UpdateProfile(ctx context.Context, u *domain.User) error
	// SetRefreshTokenHash stores the hash of the user's live refresh token; "" clears it.
	SetRefreshTokenHash(ctx context.Context, id int64, hash string) error
	// SwapRefreshTokenHash replaces oldHash with newHash only if oldHash is still the stored
	// value; "" as newHash clears it. Returns false when the stored hash has moved on.
	SwapRefreshTokenHash(ctx context.Context, id int64, oldHash, newHash string) (bool, error)
	// DeleteWithData removes the user and all rows they own in one transaction.
	// Returns false when the user does not exist.
	DeleteWithData(ctx context.Context, id int64) (bool, error)
}
