package domain

import (
	"errors"
	"strings"
	"time"
)

// Field length limits.
const (
	MaxUsernameLen = 30
	MaxFullNameLen = 50
	MaxEmailLen    = 50
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")
	ErrFieldTooLong  = errors.New("field exceeds maximum length")
	ErrFieldRequired = errors.New("field is required")
)

// User is the core user entity. RefreshTokenHash is the hex SHA-256 of the one live
// refresh token, or "" when the user is signed out.
type User struct {
	ID               int64
	Username         string
	FullName         string
	Email            string
	PasswordHash     string
	RefreshTokenHash string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Profile is the public view of a user. It never carries credentials.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email}
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" || u.FullName == "" || u.Email == "" || u.PasswordHash == "" {
		return ErrFieldRequired
	}
	if len(u.Username) > MaxUsernameLen || len(u.FullName) > MaxFullNameLen || len(u.Email) > MaxEmailLen {
		return ErrFieldTooLong
	}
	return nil
}
