package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level, format string
		debug, info   bool
	}{
		{"", "", false, true},
		{"debug", "console", true, true},
		{"WARN", "json", false, false},
	}
	for _, tc := range cases {
		logger, err := New(tc.level, tc.format)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tc.level, tc.format, err)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("New(%q): debug enabled = %v", tc.level, got)
		}
		if got := logger.Core().Enabled(zapcore.InfoLevel); got != tc.info {
			t.Fatalf("New(%q): info enabled = %v", tc.level, got)
		}
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New("loud", ""); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}
