package logging

import (
	"log/slog"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	// Adapter over nil falls back to the default logger.
	adapter := NewSlogAdapter(nil)
	if adapter == nil || adapter.Logger() == nil {
		t.Fatal("expected adapter with a usable logger")
	}

	logger := slog.Default()
	adapter = NewSlogAdapter(logger)
	if adapter.Logger() != logger {
		t.Error("Logger() should return the wrapped logger")
	}

	// Level methods must not panic.
	adapter.Debug("msg", "key", "value")
	adapter.Info("msg", "key", "value")
	adapter.Warn("msg", "key", "value")
	adapter.Error("msg", "key", "value")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
