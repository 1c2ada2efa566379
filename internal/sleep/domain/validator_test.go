package domain

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return NewValidator(func() time.Time { return fixedNow })
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func session(id, userID int64, start, end string) Session {
	return Session{ID: id, UserID: userID, Start: at(start), End: at(end)}
}

func TestValidateAndNormalize_SucceedsAndTruncates(t *testing.T) {
	v := newTestValidator()
	got, err := v.ValidateAndNormalize(1, "2024-01-02T22:15:30.987654Z", "2024-01-03T06:45:10.5+00:00", nil, nil, ModeCreate)
	if err != nil {
		t.Fatalf("ValidateAndNormalize: %v", err)
	}
	wantStart := at("2024-01-02T22:15:30Z")
	wantEnd := at("2024-01-03T06:45:10Z")
	if !got.Start.Equal(wantStart) || !got.End.Equal(wantEnd) {
		t.Errorf("got [%v, %v), want [%v, %v)", got.Start, got.End, wantStart, wantEnd)
	}
	if got.Start.Location() != time.UTC || got.End.Location() != time.UTC {
		t.Error("normalized bounds should be in UTC")
	}
	if got.Start.Nanosecond() != 0 || got.End.Nanosecond() != 0 {
		t.Error("normalized bounds should have no sub-second part")
	}
}

func TestValidateAndNormalize_ConvertsOffsetsToUTC(t *testing.T) {
	v := newTestValidator()
	got, err := v.ValidateAndNormalize(1, "2024-01-03T01:00:00+05:30", "2024-01-03T08:00:00+05:30", nil, nil, ModeCreate)
	if err != nil {
		t.Fatalf("ValidateAndNormalize: %v", err)
	}
	if want := at("2024-01-02T19:30:00Z"); !got.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", got.Start, want)
	}
}

func TestValidateAndNormalize_Layouts(t *testing.T) {
	v := newTestValidator()
	testCases := []struct {
		name  string
		start string
		end   string
	}{
		{"rfc3339", "2024-01-02T22:00:00Z", "2024-01-03T06:00:00Z"},
		{"no seconds with zone", "2024-01-02T22:00Z", "2024-01-03T06:00Z"},
		{"naive T", "2024-01-02T22:00:00", "2024-01-03T06:00:00"},
		{"naive T minutes", "2024-01-02T22:00", "2024-01-03T06:00"},
		{"naive space", "2024-01-02 22:00:00", "2024-01-03 06:00:00"},
		{"naive space minutes", "2024-01-02 22:00", "2024-01-03 06:00"},
		{"dates", "2024-01-02", "2024-01-02T08:00:00Z"},
		{"padded", "  2024-01-02T22:00:00Z ", "2024-01-03T06:00:00Z"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.ValidateAndNormalize(1, tc.start, tc.end, nil, nil, ModeCreate); err != nil {
				t.Errorf("ValidateAndNormalize(%q, %q): %v", tc.start, tc.end, err)
			}
		})
	}
}

func TestValidateAndNormalize_Failures(t *testing.T) {
	v := newTestValidator()
	testCases := []struct {
		name   string
		start  string
		end    string
		kind   error
		reason string
	}{
		{"missing start", "", "2024-01-03T06:00:00Z", ErrInvalidInput, ReasonMissingFields},
		{"missing end", "2024-01-02T22:00:00Z", "", ErrInvalidInput, ReasonMissingFields},
		{"bad start", "yesterday", "2024-01-03T06:00:00Z", ErrInvalidInput, ReasonBadFormat},
		{"bad end", "2024-01-02T22:00:00Z", "2024-13-03T06:00:00Z", ErrInvalidInput, ReasonBadFormat},
		{"end equals start", "2024-01-03T06:00:00Z", "2024-01-03T06:00:00Z", ErrInvalidRange, ReasonInvalidRange},
		{"end before start", "2024-01-03T06:00:00Z", "2024-01-03T05:00:00Z", ErrInvalidRange, ReasonInvalidRange},
		{"equal after truncation", "2024-01-03T06:00:00.2Z", "2024-01-03T06:00:00.9Z", ErrInvalidRange, ReasonInvalidRange},
		{"more than 12h", "2024-01-01T00:00:00Z", "2024-01-01T13:00:00Z", ErrExceedsMaxDuration, ReasonMaxDuration},
		{"12h and one second", "2024-01-02T18:00:00Z", "2024-01-03T06:00:01Z", ErrExceedsMaxDuration, ReasonMaxDuration},
		{"older than five days", "2023-12-28T23:00:00Z", "2023-12-29T06:00:00Z", ErrTooOld, ReasonTooOld},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateAndNormalize(1, tc.start, tc.end, nil, nil, ModeCreate)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("error = %v, want kind %v", err, tc.kind)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
			if ve.Reason != tc.reason {
				t.Errorf("Reason = %q, want %q", ve.Reason, tc.reason)
			}
		})
	}
}

func TestValidateAndNormalize_ExactlyTwelveHours(t *testing.T) {
	v := newTestValidator()
	if _, err := v.ValidateAndNormalize(1, "2024-01-02T18:00:00Z", "2024-01-03T06:00:00Z", nil, nil, ModeCreate); err != nil {
		t.Fatalf("12h session should be accepted: %v", err)
	}
}

func TestValidateAndNormalize_RecencyBoundary(t *testing.T) {
	v := newTestValidator()
	// Start of the day five days before 2024-01-03 is 2023-12-29T00:00:00Z.
	if _, err := v.ValidateAndNormalize(1, "2023-12-29T00:00:00Z", "2023-12-29T07:00:00Z", nil, nil, ModeCreate); err != nil {
		t.Errorf("start at the recency boundary should be accepted: %v", err)
	}
	_, err := v.ValidateAndNormalize(1, "2023-12-28T23:59:59Z", "2023-12-29T07:00:00Z", nil, nil, ModeCreate)
	if !errors.Is(err, ErrTooOld) {
		t.Errorf("one second before the boundary: want ErrTooOld, got %v", err)
	}
}

func TestCheck_EditSkipsCreationPolicy(t *testing.T) {
	v := newTestValidator()
	old := Interval{Start: at("2023-12-01T22:00:00Z"), End: at("2023-12-02T06:00:00Z")}
	if _, err := v.Check(1, old, nil, nil, ModeEdit); err != nil {
		t.Errorf("edit of an old session should skip the recency rule: %v", err)
	}
	if _, err := v.Check(1, old, nil, nil, ModeCreate); !errors.Is(err, ErrTooOld) {
		t.Errorf("create of an old session: want ErrTooOld, got %v", err)
	}
	long := Interval{Start: at("2024-01-02T18:00:00Z"), End: at("2024-01-03T07:00:00Z")}
	if _, err := v.Check(1, long, nil, nil, ModeEdit); !errors.Is(err, ErrExceedsMaxDuration) {
		t.Errorf("edit keeps the duration cap: got %v", err)
	}
}

func TestDayDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"2024-01-02T22:00:00Z", "2024-01-02T23:00:00Z", 0},
		{"2024-01-02T23:59:59Z", "2024-01-03T00:00:00Z", 1},
		{"2024-01-02T00:00:00Z", "2024-01-04T00:00:00Z", 2},
		{"2024-02-28T12:00:00Z", "2024-03-01T01:00:00Z", 2},
	}
	for _, tc := range testCases {
		if got := dayDistance(at(tc.a), at(tc.b)); got != tc.want {
			t.Errorf("dayDistance(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestValidateAndNormalize_Overlap(t *testing.T) {
	v := newTestValidator()
	existing := []Session{session(7, 1, "2024-01-03T08:00:00Z", "2024-01-03T09:00:00Z")}
	testCases := []struct {
		name    string
		start   string
		end     string
		overlap bool
	}{
		{"candidate start inside existing", "2024-01-03T08:30:00Z", "2024-01-03T09:30:00Z", true},
		{"candidate end inside existing", "2024-01-03T07:30:00Z", "2024-01-03T08:30:00Z", true},
		{"candidate contains existing", "2024-01-03T07:00:00Z", "2024-01-03T10:00:00Z", true},
		{"candidate inside existing", "2024-01-03T08:15:00Z", "2024-01-03T08:45:00Z", true},
		{"identical", "2024-01-03T08:00:00Z", "2024-01-03T09:00:00Z", true},
		{"touching after", "2024-01-03T09:00:00Z", "2024-01-03T10:00:00Z", false},
		{"touching before", "2024-01-03T07:00:00Z", "2024-01-03T08:00:00Z", false},
		{"disjoint", "2024-01-02T22:00:00Z", "2024-01-03T06:00:00Z", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateAndNormalize(1, tc.start, tc.end, nil, existing, ModeCreate)
			if tc.overlap && !errors.Is(err, ErrOverlap) {
				t.Errorf("want ErrOverlap, got %v", err)
			}
			if !tc.overlap && err != nil {
				t.Errorf("want success, got %v", err)
			}
		})
	}
}

func TestValidateAndNormalize_ExcludeSelf(t *testing.T) {
	v := newTestValidator()
	existing := []Session{
		session(7, 1, "2024-01-03T08:00:00Z", "2024-01-03T09:00:00Z"),
		session(8, 1, "2024-01-03T10:00:00Z", "2024-01-03T11:00:00Z"),
	}
	id := int64(7)
	if _, err := v.ValidateAndNormalize(1, "2024-01-03T08:00:00Z", "2024-01-03T09:00:00Z", &id, existing, ModeEdit); err != nil {
		t.Errorf("unchanged bounds with exclude-self should succeed: %v", err)
	}
	_, err := v.ValidateAndNormalize(1, "2024-01-03T08:00:00Z", "2024-01-03T10:30:00Z", &id, existing, ModeEdit)
	if !errors.Is(err, ErrOverlap) {
		t.Errorf("widening into another session: want ErrOverlap, got %v", err)
	}
}

func TestValidateAndNormalize_IgnoresOtherUsers(t *testing.T) {
	v := newTestValidator()
	existing := []Session{session(7, 2, "2024-01-03T08:00:00Z", "2024-01-03T09:00:00Z")}
	if _, err := v.ValidateAndNormalize(1, "2024-01-03T08:00:00Z", "2024-01-03T09:00:00Z", nil, existing, ModeCreate); err != nil {
		t.Errorf("another user's session must not conflict: %v", err)
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	a := Interval{Start: at("2024-01-03T08:00:00Z"), End: at("2024-01-03T09:00:00Z")}
	b := Interval{Start: at("2024-01-03T08:59:59Z"), End: at("2024-01-03T12:00:00Z")}
	c := Interval{Start: at("2024-01-03T09:00:00Z"), End: at("2024-01-03T12:00:00Z")}
	if Overlaps(a, b) != Overlaps(b, a) || !Overlaps(a, b) {
		t.Error("a and b share a second and should overlap both ways")
	}
	if Overlaps(a, c) || Overlaps(c, a) {
		t.Error("adjacent intervals should not overlap")
	}
}

func TestNewValidator_DefaultClock(t *testing.T) {
	v := NewValidator(nil)
	start := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	if _, err := v.ValidateAndNormalize(1, start, end, nil, nil, ModeCreate); err != nil {
		t.Errorf("recent session with the wall clock: %v", err)
	}
}
