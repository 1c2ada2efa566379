// Package domain defines the task type and its field rules.
package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the task progress code stored in a single character.
type Status string

const (
	StatusPending    Status = "P"
	StatusInProgress Status = "I"
	StatusCompleted  Status = "C"
)

// Field limits match the column widths.
const (
	MaxTitleLen = 100
	MaxBodyLen  = 500
)

// DateLayout is the wire and storage format of a due date.
const DateLayout = "2006-01-02"

var (
	ErrFieldRequired = errors.New("task field is required")
	ErrFieldTooLong  = errors.New("task field exceeds maximum length")
	ErrInvalidStatus = errors.New("task status must be P, I or C")
	ErrInvalidDate   = errors.New("invalid due date")
)

// Task is a to-do item owned by one user.
type Task struct {
	ID        int64
	UserID    int64
	Title     string
	Body      string
	Status    Status
	DueDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseDueDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the UTC calendar day.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Validate trims title and body and checks every field.
func (t *Task) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	t.Body = strings.TrimSpace(t.Body)
	if t.Title == "" || t.Body == "" || t.DueDate.IsZero() {
		return ErrFieldRequired
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLen || utf8.RuneCountInString(t.Body) > MaxBodyLen {
		return ErrFieldTooLong
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Patch holds the fields of a partial update; nil means unchanged.
type Patch struct {
	Title   *string
	Body    *string
	Status  *string
	DueDate *string
}

// Empty reports whether no field is set.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Status == nil && p.DueDate == nil
}

// Apply copies the set fields onto t and validates the result.
func (p Patch) Apply(t *Task) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Body != nil {
		t.Body = *p.Body
	}
	if p.Status != nil {
		t.Status = Status(strings.ToUpper(strings.TrimSpace(*p.Status)))
	}
	if p.DueDate != nil {
		d, err := ParseDueDate(*p.DueDate)
		if err != nil {
			return err
		}
		t.DueDate = d
	}
	return t.Validate()
}
