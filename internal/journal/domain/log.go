// Package domain defines daily journal logs and their field rules.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a log date.
const DateLayout = "2006-01-02"

// DefaultRating is used by the column default; the API always supplies one.
const DefaultRating = 2

var (
	ErrSummaryRequired = errors.New("summary is required")
	ErrInvalidRating   = errors.New("rating must be a number")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Log is one user's summary and rating for a calendar day. Summary is plaintext here;
// it is encrypted before it reaches storage.
type Log struct {
	ID        int64
	UserID    int64
	Summary   string
	Rating    int
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rating is the date and rating pair served by the day-rating view.
type Rating struct {
	Date   time.Time
	Rating int
}

// ParseDate accepts exactly YYYY-MM-DD naming a real calendar day.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseRating reads a rating sent as a JSON number or a numeric string.
// Fractional values are rejected since ratings are stored as integers.
func ParseRating(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ErrInvalidRating
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, ErrInvalidRating
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrInvalidRating
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, ErrInvalidRating
	}
	return int(f), nil
}

// NormalizeSummary trims s and rejects an empty result.
func NormalizeSummary(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrSummaryRequired
	}
	return s, nil
}
