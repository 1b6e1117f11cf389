package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	dev, err := NewLogger(true)
	if err != nil {
		t.Fatalf("NewLogger(true): %v", err)
	}
	defer dev.Sync()
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Error("development logger should enable debug level")
	}

	prod, err := NewLogger(false)
	if err != nil {
		t.Fatalf("NewLogger(false): %v", err)
	}
	defer prod.Sync()
	if prod.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should not enable debug level")
	}
	if !prod.Core().Enabled(zapcore.InfoLevel) {
		t.Error("production logger should enable info level")
	}
}
