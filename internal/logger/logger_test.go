package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	if err := Init(Config{Debug: false, ConfigDir: dir}); err != nil {
		t.Fatalf("Init() returned unexpected error: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Init()")
	}

	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Errorf("log directory not created: %v", err)
	}

	// Logging after init must not panic
	Info("test message", "key", "value")
	Warn("test warning")
}

func TestLoggingBeforeInitIsSafe(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	// None of these may panic with no logger configured
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}
