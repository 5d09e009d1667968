package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/midilink/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesTypedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("ping",
		l.Field().Duration("rtt", 12*time.Millisecond),
		l.Field().String("conn", "abc"),
		l.Field().Error("error", errors.New("boom")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["rtt"] != 12*time.Millisecond {
		t.Errorf("rtt = %v", ctx["rtt"])
	}
	if ctx["conn"] != "abc" {
		t.Errorf("conn = %v", ctx["conn"])
	}
	if ctx["error"] != "boom" {
		t.Errorf("error = %v", ctx["error"])
	}
}

func TestZapLoggerSetLevel(t *testing.T) {
	tests := []struct {
		name  string
		level contracts.LogLevel
		want  int
	}{
		{"debug", contracts.DebugLevel, 4},
		{"info", contracts.InfoLevel, 3},
		{"warn", contracts.WarnLevel, 2},
		{"error", contracts.ErrorLevel, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			l := FromZap(zap.New(core))
			l.SetLevel(tt.level)

			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			if got := logs.Len(); got != tt.want {
				t.Errorf("got %d entries, want %d", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]contracts.LogLevel{
		"debug":   contracts.DebugLevel,
		"info":    contracts.InfoLevel,
		"warning": contracts.WarnLevel,
		"error":   contracts.ErrorLevel,
		"bogus":   contracts.InfoLevel,
	}
	for name, want := range tests {
		if got := contracts.ParseLogLevel(name); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
