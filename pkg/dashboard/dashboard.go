package dashboard

import (
	"time"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	core "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext identifies who is looking at a dashboard.
type ViewerContext = core.ViewerContext

// Generator re-exports the audience generator contract for custom backends.
type Generator = audience.Generator

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewMockGenerator returns the deterministic generator delayed by latency.
func NewMockGenerator(latency time.Duration) Generator {
	return audience.WithLatency(audience.MockGenerator{}, latency)
}
