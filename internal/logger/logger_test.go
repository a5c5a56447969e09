package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewAppliesLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
	}

	for raw, want := range cases {
		log, err := New(raw, "json")
		if err != nil {
			t.Fatalf("New(%q): %v", raw, err)
		}
		if !log.Core().Enabled(want) {
			t.Fatalf("%q: expected level %s to be enabled", raw, want)
		}
		if want > zapcore.DebugLevel && log.Core().Enabled(want-1) {
			t.Fatalf("%q: expected level %s to be disabled", raw, want-1)
		}
	}
}
