package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_LevelFallback(t *testing.T) {
	log, err := New(Config{Level: "DEBUG", Encoding: "console"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}

	log, err = New(Config{Level: "nonsense"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) || !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level fallback")
	}
}

func TestFromContext_AddsIdentifiers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "user-1")
	FromContext(ctx, base).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["user_id"] != "user-1" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if RequestID(ctx) != "req-1" {
		t.Fatalf("RequestID mismatch")
	}

	if got := FromContext(context.Background(), base); got != base {
		t.Fatalf("expected base logger for bare context")
	}
}
