package blog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogger(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestPrintf(t *testing.T) {
	buf := captureLogger(t, slog.LevelInfo)

	Printf(LevelWarning, "pipe %q closed", "ffmpeg")
	Printf(LevelDebug, "hidden %d", 1)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("missing warn level: %s", out)
	}
	if !strings.Contains(out, `pipe \"ffmpeg\" closed`) {
		t.Errorf("missing message: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message leaked: %s", out)
	}
}

func TestAttrs(t *testing.T) {
	buf := captureLogger(t, slog.LevelDebug)

	Debug("procpipe: open", "cmd", "cat")
	if !strings.Contains(buf.String(), "cmd=cat") {
		t.Errorf("got=%s", buf.String())
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		level Level
		slog  slog.Level
		name  string
	}{
		{LevelError, slog.LevelError, "error"},
		{LevelWarning, slog.LevelWarn, "warning"},
		{LevelInfo, slog.LevelInfo, "info"},
		{LevelDebug, slog.LevelDebug, "debug"},
		{Level(7), slog.LevelInfo, "level(7)"},
	}
	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.slog {
			t.Errorf("%v.SlogLevel()=%v, want %v", tt.level, got, tt.slog)
		}
		if got := tt.level.String(); got != tt.name {
			t.Errorf("String()=%q, want %q", got, tt.name)
		}
	}
}

func TestCrash(t *testing.T) {
	var got string
	SetCrashHandler(func(msg string) { got = msg })
	t.Cleanup(func() { SetCrashHandler(nil) })

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Crash returned without panic")
		}
		if r != "out of memory: 42 bytes" {
			t.Errorf("panic=%v", r)
		}
		if got != "out of memory: 42 bytes" {
			t.Errorf("handler got=%q", got)
		}
	}()
	Crash("out of memory: %d bytes", 42)
}

func TestCrash_DefaultHandlerLogs(t *testing.T) {
	buf := captureLogger(t, slog.LevelInfo)

	func() {
		defer func() { _ = recover() }()
		Crash("boom")
	}()
	if !strings.Contains(buf.String(), "crash: boom") {
		t.Errorf("got=%s", buf.String())
	}
}
