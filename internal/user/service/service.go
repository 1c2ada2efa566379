// Package service implements profile reads and updates for the signed-in user.
package service

import (
	"context"
	"errors"
	"strings"

	"daily-logger/internal/user/domain"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrNoFields   = errors.New("at least one field is required")
	ErrEmptyField = errors.New("fields cannot be empty")
)

// UserRepo is the minimal user repository needed by the profile service.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
}

// ProfilePatch holds the optional profile fields of an update. Nil means unchanged.
type ProfilePatch struct {
	FullName *string
	Username *string
	Email    *string
}

// ProfileService reads and updates user profiles.
type ProfileService struct {
	users UserRepo
}

// NewProfileService returns a ProfileService backed by users.
func NewProfileService(users UserRepo) *ProfileService {
	return &ProfileService{users: users}
}

// Get returns the user with id or ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Update applies p to the user's profile. At least one field must be non-empty, and no
// provided field may be blank. A username or email held by another user is a conflict.
func (s *ProfileService) Update(ctx context.Context, id int64, p ProfilePatch) (*domain.User, error) {
	if empty(p.FullName) && empty(p.Username) && empty(p.Email) {
		return nil, ErrNoFields
	}
	if blank(p.FullName) || blank(p.Username) || blank(p.Email) {
		return nil, ErrEmptyField
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Username != nil {
		username := strings.TrimSpace(*p.Username)
		other, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrUsernameTaken
		}
		u.Username = username
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		other, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrEmailTaken
		}
		u.Email = email
	}
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func empty(s *string) bool { return s == nil || *s == "" }

func blank(s *string) bool { return s != nil && strings.TrimSpace(*s) == "" }
