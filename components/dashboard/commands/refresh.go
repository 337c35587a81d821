package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// RefreshDashboardInput emits a refresh notification to live transports.
type RefreshDashboardInput struct {
	Event dashboard.RefreshEvent `json:"event"`
}

type refreshNotifier interface {
	NotifyRefresh(ctx context.Context, event dashboard.RefreshEvent) error
}

// RefreshDashboardCommand triggers refresh hooks without forcing transports.
type RefreshDashboardCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshDashboardCommand creates the command.
func NewRefreshDashboardCommand(service refreshNotifier, telemetry Telemetry) *RefreshDashboardCommand {
	return &RefreshDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDashboardInput] = (*RefreshDashboardCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *RefreshDashboardCommand) Execute(ctx context.Context, msg RefreshDashboardInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "manual"
	}
	if err := c.service.NotifyRefresh(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.refresh", map[string]any{
		"session_id": msg.Event.SessionID,
		"area_code":  msg.Event.AreaCode,
		"reason":     msg.Event.Reason,
	})
	return nil
}
