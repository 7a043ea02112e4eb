package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "debug", "json")
	log.Debug("hello", slog.String("k", "v"))
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn", "text")
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
