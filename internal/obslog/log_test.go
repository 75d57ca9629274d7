package obslog

import (
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerWritesMessageAndAttrs(t *testing.T) {
	var buf strings.Builder
	logger := New(&buf, slog.LevelInfo, false)
	logger.Info("search complete", "found", 3, "elapsed_ms", 42)

	out := buf.String()
	if !strings.Contains(out, "search complete") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "found=3") {
		t.Errorf("output %q missing found=3 attr", out)
	}
}

func TestHandlerRespectsLevel(t *testing.T) {
	var buf strings.Builder
	logger := New(&buf, slog.LevelWarn, false)
	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output below configured level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "info": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError}
	for s, want := range cases {
		got, ok := ParseLevel(s)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, true", s, got, ok, want)
		}
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Error("ParseLevel(bogus) = true, want false")
	}
}
