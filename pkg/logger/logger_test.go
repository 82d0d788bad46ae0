package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := New(Config{
		Level:    level,
		Colorize: false,
		ShowTime: false,
		Output:   buf,
	})
	return l, buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(WARN)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("DEBUG should be filtered at WARN level")
	}
	if strings.Contains(out, "info message") {
		t.Error("INFO should be filtered at WARN level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("WARN should pass at WARN level")
	}
	if !strings.Contains(out, "error message") {
		t.Error("ERROR should pass at WARN level")
	}
}

func TestErrorAboveWarn(t *testing.T) {
	l, buf := newBufferLogger(ERROR)

	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "warn message") {
		t.Error("WARN should be filtered at ERROR level")
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Errorf("Expected ERROR line, got %q", out)
	}
}

func TestFormattedMessages(t *testing.T) {
	l, buf := newBufferLogger(DEBUG)

	l.Infof("processed %d of %d files", 3, 5)

	if !strings.Contains(buf.String(), "processed 3 of 5 files") {
		t.Errorf("Formatted message missing, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LogLevel
	}{
		{"Lowercase debug", "debug", DEBUG},
		{"Uppercase error", "ERROR", ERROR},
		{"Mixed case warn", "Warn", WARN},
		{"Fatal", "FATAL", FATAL},
		{"Unknown falls back to info", "verbose", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	levels := map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	for level, want := range levels {
		if got := level.String(); got != want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", level, got, want)
		}
	}
}
