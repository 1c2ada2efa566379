// Package domain holds the sleep session entity and the interval validator that guards it.
package domain

import "time"

// Session is one recorded sleep interval [Start, End) for a user. Bounds are stored in UTC at second precision.
type Session struct {
	ID        int64
	UserID    int64
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Interval returns the session's bounds.
func (s Session) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether candidate conflicts with existing. Touching bounds do not overlap.
func Overlaps(existing, candidate Interval) bool {
	containsStart := !existing.Start.After(candidate.Start) && existing.End.After(candidate.Start)
	containsEnd := existing.Start.Before(candidate.End) && !existing.End.Before(candidate.End)
	enclosed := !existing.Start.Before(candidate.Start) && !existing.End.After(candidate.End)
	return containsStart || containsEnd || enclosed
}
