package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  LevelDebug,
		Output: &buf,
		JSON:   true,
	}

	logger := New(cfg)
	if logger == nil {
		t.Fatal("New logger should not be nil")
	}

	t.Run("Levels", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug msg")
		if !strings.Contains(buf.String(), "debug msg") {
			t.Error("debug logging failed")
		}

		buf.Reset()
		logger.Info("info msg")
		if !strings.Contains(buf.String(), "info msg") {
			t.Error("info logging failed")
		}

		buf.Reset()
		logger.Warn("warn msg")
		if !strings.Contains(buf.String(), "warn msg") {
			t.Error("warn logging failed")
		}

		buf.Reset()
		logger.Error("error msg")
		if !strings.Contains(buf.String(), "error msg") {
			t.Error("error logging failed")
		}
	})

	t.Run("DynamicLevel", func(t *testing.T) {
		logger.SetLevel(LevelError)
		if logger.GetLevel() != LevelError {
			t.Error("SetLevel failed")
		}

		buf.Reset()
		logger.Info("should not appear")
		if buf.Len() > 0 {
			t.Error("Logged info message when level was Error")
		}

		logger.SetLevel(LevelDebug)
	})

	t.Run("WithComponent", func(t *testing.T) {
		buf.Reset()
		l := logger.WithComponent("test-comp")
		l.Info("msg")
		if !strings.Contains(buf.String(), "test-comp") {
			t.Error("WithComponent missing component field")
		}
	})

	t.Run("WithFields", func(t *testing.T) {
		buf.Reset()
		l := logger.WithFields(map[string]any{"foo": "bar"})
		l.Info("msg")
		if !strings.Contains(buf.String(), "foo") || !strings.Contains(buf.String(), "bar") {
			t.Error("WithFields missing fields")
		}
	})
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})

	logger.WithComponent("locker").Info("acquired", "attempts", 3)
	line := buf.String()

	if !strings.Contains(line, "[info]") {
		t.Errorf("missing level in line: %q", line)
	}
	if !strings.Contains(line, "locker: acquired") {
		t.Errorf("component not promoted to header: %q", line)
	}
	if !strings.Contains(line, "attempts=3") {
		t.Errorf("missing attribute in line: %q", line)
	}
}

func TestSetDefaultBeforeFirstDefault(t *testing.T) {
	defaultMu.Lock()
	saved := defaultLogger
	defaultLogger = nil
	defaultMu.Unlock()
	defer SetDefault(saved)

	var buf bytes.Buffer
	custom := New(Config{Level: LevelDebug, Output: &buf, JSON: true})
	SetDefault(custom)

	if Default() != custom {
		t.Fatal("Default replaced the logger installed with SetDefault")
	}

	Debug("configured logger in use")
	if !strings.Contains(buf.String(), "configured logger in use") {
		t.Errorf("package-level logging bypassed the installed default: %q", buf.String())
	}

	WithComponent("handle").Info("component msg")
	if !strings.Contains(buf.String(), "component msg") {
		t.Errorf("WithComponent bypassed the installed default: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
