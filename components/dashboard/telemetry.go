package dashboard

import "context"

// Telemetry records dashboard events for observability. Session transitions are
// recorded as dashboard.<event kind>, e.g. dashboard.generation.completed.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function to the Telemetry interface.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls f(ctx, event, payload).
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
