package dashboard

import (
	"context"
	"errors"
)

// NotificationsClient defines the minimal interface needed from an outbound
// notifications service.
type NotificationsClient interface {
	PublishDashboardEvent(ctx context.Context, channel string, event RefreshEvent) error
}

// NotificationsHook forwards session and layout events to an external notifications client.
// Only reasons listed in Reasons are forwarded; an empty list forwards everything.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
	Reasons []string
}

// Publish forwards events to the configured notifications client.
func (h *NotificationsHook) Publish(ctx context.Context, event RefreshEvent) error {
	if h == nil || h.Client == nil || !h.accepts(event.Reason) {
		return nil
	}
	return h.Client.PublishDashboardEvent(ctx, h.Channel, event)
}

func (h *NotificationsHook) accepts(reason string) bool {
	if len(h.Reasons) == 0 {
		return true
	}
	for _, r := range h.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// RefreshHooks fans an event out to several hooks. Every hook runs; errors are joined.
type RefreshHooks []RefreshHook

// Publish implements RefreshHook.
func (hooks RefreshHooks) Publish(ctx context.Context, event RefreshEvent) error {
	var errs error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.Publish(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
