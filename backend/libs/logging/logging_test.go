package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("DEBUG"); got != zapcore.DebugLevel {
		t.Fatalf("expected debug, got %s", got)
	}
	if got := parseLevel("chatty"); got != zapcore.InfoLevel {
		t.Fatalf("expected info fallback, got %s", got)
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.log")
	t.Setenv(logFileEnv, path)
	t.Setenv(levelEnv, "info")

	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("reservation approved", zap.String("reservation_id", "RES-1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log file to contain entries")
	}
}

func TestWriterSplitsLines(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := Writer{Logger: zap.New(core)}

	n, err := w.Write([]byte("GET /health 200\n\nPOST /auth/login 401\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected bytes to be reported written")
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 log entries, got %d", logs.Len())
	}
}
