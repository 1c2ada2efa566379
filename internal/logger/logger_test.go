package logger

import "testing"

func TestNew(t *testing.T) {
	testCases := []struct {
		level string
		err   bool
	}{
		{"debug", false},
		{"INFO", false},
		{" warn ", false},
		{"", false},
		{"verbose", true},
	}
	for _, tc := range testCases {
		log, err := New(tc.level)
		if tc.err {
			if err == nil {
				t.Errorf("New(%q) should return error", tc.level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q): %v", tc.level, err)
		}
		if log == nil {
			t.Fatalf("New(%q) returned nil logger", tc.level)
		}
	}
}

func TestNew_LevelFilters(t *testing.T) {
	log, err := New("error")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("debug should be disabled at error level")
	}
}
