package logger

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestSetLevelRuntimeChange(t *testing.T) {
	Init("info")

	var buf bytes.Buffer
	Log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: &level}))

	Debug("hidden")
	if buf.Len() > 0 {
		t.Error("debug message should not appear at info level")
	}

	SetLevel("debug")
	buf.Reset()
	Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug message should appear after SetLevel(debug)")
	}

	SetLevel("error")
	buf.Reset()
	Warn("hidden again")
	if buf.Len() > 0 {
		t.Error("warn message should not appear at error level")
	}
}

func TestSetLevelInvalidFallsBackToInfo(t *testing.T) {
	Init("debug")
	SetLevel("garbage")

	var buf bytes.Buffer
	Log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: &level}))

	Debug("should be hidden")
	if buf.Len() > 0 {
		t.Error("invalid level should fall back to info, hiding debug")
	}

	buf.Reset()
	Info("should be visible")
	if buf.Len() == 0 {
		t.Error("info should be visible at info level")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	old := Log
	defer func() { Log = old }()

	// Components log before main calls Init in some test setups;
	// that must never panic
	Log = nil
	Debug("noop")
	Info("noop")
	Warn("noop")
	Error("noop")
}
