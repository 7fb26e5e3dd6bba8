package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level, format string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Options{Level: level, Format: format, Output: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return l, &buf
}

func TestLogger_Info(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "text")
	l.Info("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected log to contain 'test message', got: %s", buf.String())
	}
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	l, buf := newBufferLogger(t, "warn", "text")
	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("Expected debug/info to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "shown") {
		t.Errorf("Expected warn to be logged, got: %s", output)
	}
}

func TestLogger_Error(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "text")
	l.Error("test error message", errors.New("test error"))

	output := buf.String()
	if !strings.Contains(output, "test error message") || !strings.Contains(output, "test error") {
		t.Errorf("Expected error log to contain error message, got: %s", output)
	}
}

func TestLogger_WithFieldsJSON(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")
	l.WithField("first", "value1").WithFields(map[string]interface{}{"second": 42}).Info("chained fields test")

	output := buf.String()
	if !strings.Contains(output, `"first":"value1"`) || !strings.Contains(output, `"second":42`) {
		t.Errorf("Expected log to contain chained fields, got: %s", output)
	}
}

func TestNew_RejectsBadOptions(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("Expected invalid level to fail")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("Expected invalid format to fail")
	}
}
