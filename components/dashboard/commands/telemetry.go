package commands

import (
	"context"

	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// Telemetry is the sink commands report to after a successful Execute. It is the
// dashboard Telemetry so one recorder serves the service and its commands.
type Telemetry = dashboard.Telemetry

var discardTelemetry = dashboard.TelemetryFunc(func(context.Context, string, map[string]any) {})

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry
	}
	return t
}
