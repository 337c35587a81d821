package dashboard

import (
	"context"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// Provider fetches data required to render a widget instance.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch calls f(ctx, meta).
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext contains the metadata needed by providers. State is a snapshot of
// the session the widget renders for.
type WidgetContext struct {
	Instance    WidgetInstance
	Viewer      ViewerContext
	SessionID   string
	State       audience.State
	Preferences Preferences
	Translator  TranslationService
}

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any
