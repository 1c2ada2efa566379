package domain

import "errors"

// Validation failure kinds. Every *ValidationError unwraps to exactly one of these.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRange       = errors.New("invalid range")
	ErrExceedsMaxDuration = errors.New("exceeds max duration")
	ErrTooOld             = errors.New("too old")
	ErrFutureBoundary     = errors.New("future boundary")
	ErrOverlap            = errors.New("overlap")
)

// Reasons reported to clients.
const (
	ReasonMissingFields  = "All fields are mandatory."
	ReasonBadFormat      = "Invalid date format."
	ReasonBadStart       = "Invalid start time format."
	ReasonBadEnd         = "Invalid end time format."
	ReasonNoFields       = "No fields to update"
	ReasonInvalidRange   = "End time must be after start time."
	ReasonMaxDuration    = "Sleep duration cannot exceed 12 hours."
	ReasonTooOld         = "Cannot log sleep records older than 5 days."
	ReasonFutureBoundary = "End time cannot be beyond the next day."
	ReasonOverlap        = "Sleep time overlaps with existing record."
)

// ValidationError is a rejected candidate interval with the reason shown to the caller.
type ValidationError struct {
	Kind   error
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(kind error, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Reason: reason}
}

// InvalidInput returns an ErrInvalidInput validation error with the given reason.
func InvalidInput(reason string) error {
	return invalid(ErrInvalidInput, reason)
}

// OverlapError is returned when the store itself rejects an overlapping write.
func OverlapError() error {
	return invalid(ErrOverlap, ReasonOverlap)
}
