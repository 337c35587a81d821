package telemetry

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// ZapTelemetry writes dashboard telemetry events as structured zap entries.
type ZapTelemetry struct {
	logger *zap.Logger
	level  zapcore.Level
}

var _ dashboard.Telemetry = (*ZapTelemetry)(nil)

// Option customises a ZapTelemetry.
type Option func(*ZapTelemetry)

// WithLevel sets the level of regular events. Failure events always log at warn.
func WithLevel(level zapcore.Level) Option {
	return func(t *ZapTelemetry) {
		t.level = level
	}
}

// NewZapTelemetry wraps logger. A nil logger discards events.
func NewZapTelemetry(logger *zap.Logger, opts ...Option) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &ZapTelemetry{logger: logger.Named("dashboard"), level: zapcore.InfoLevel}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record logs event with its payload keys as sorted fields.
func (t *ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	level := t.level
	if isFailure(event, payload) {
		level = zapcore.WarnLevel
	}
	ce := t.logger.Check(level, event)
	if ce == nil {
		return
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, zap.Any(key, payload[key]))
	}
	ce.Write(fields...)
}

func isFailure(event string, payload map[string]any) bool {
	if strings.HasSuffix(event, ".failed") || strings.HasSuffix(event, ".error") {
		return true
	}
	_, hasErr := payload["error"]
	return hasErr
}
