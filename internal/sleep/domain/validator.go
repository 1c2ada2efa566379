package domain

import "time"

const (
	// MaxDuration is the longest admissible sleep interval.
	MaxDuration = 12 * time.Hour
	// RecencyDays is how many days back a new session may start, counted from the start of today (UTC).
	RecencyDays = 5
	// MaxDaySpan is how many calendar days a new session's end may lie past its start's day.
	MaxDaySpan = 1
)

// Mode selects which policy checks apply. Recency and day-span rules apply only on creation.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Validator decides whether a candidate interval is admissible for a user. It is pure: the
// clock is injected and existing sessions are supplied by the caller.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator using now as its clock; nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// ValidateAndNormalize parses start and end, checks the candidate against policy and against
// the user's existing sessions (skipping excludeID), and returns the normalized bounds.
func (v *Validator) ValidateAndNormalize(userID int64, start, end string, excludeID *int64, existing []Session, mode Mode) (Interval, error) {
	if start == "" || end == "" {
		return Interval{}, invalid(ErrInvalidInput, ReasonMissingFields)
	}
	s, err := ParseTimestamp(start)
	if err != nil {
		return Interval{}, invalid(ErrInvalidInput, ReasonBadFormat)
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return Interval{}, invalid(ErrInvalidInput, ReasonBadFormat)
	}
	return v.Check(userID, Interval{Start: s, End: e}, excludeID, existing, mode)
}

// Check runs the range, duration, policy, and overlap steps on already parsed bounds.
func (v *Validator) Check(userID int64, candidate Interval, excludeID *int64, existing []Session, mode Mode) (Interval, error) {
	c := Interval{Start: Normalize(candidate.Start), End: Normalize(candidate.End)}

	if !c.End.After(c.Start) {
		return Interval{}, invalid(ErrInvalidRange, ReasonInvalidRange)
	}
	if c.Duration() > MaxDuration {
		return Interval{}, invalid(ErrExceedsMaxDuration, ReasonMaxDuration)
	}
	if mode == ModeCreate {
		earliest := startOfDay(v.now()).AddDate(0, 0, -RecencyDays)
		if c.Start.Before(earliest) {
			return Interval{}, invalid(ErrTooOld, ReasonTooOld)
		}
		if dayDistance(c.Start, c.End) > MaxDaySpan {
			return Interval{}, invalid(ErrFutureBoundary, ReasonFutureBoundary)
		}
	}
	for _, s := range existing {
		if s.UserID != userID {
			continue
		}
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if Overlaps(Interval{Start: Normalize(s.Start), End: Normalize(s.End)}, c) {
			return Interval{}, invalid(ErrOverlap, ReasonOverlap)
		}
	}
	return c, nil
}
