package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// SelectTabInput switches the active tab of a session.
type SelectTabInput struct {
	SessionID string                  `json:"session_id"`
	Tab       string                  `json:"tab"`
	Viewer    dashboard.ViewerContext `json:"viewer"`
	Actor     Actor                   `json:"actor"`
	Result    *dashboard.SessionView  `json:"-"`
}

type selectTabService interface {
	SelectTab(ctx context.Context, sessionID string, tab audience.Tab, viewer dashboard.ViewerContext) (dashboard.SessionView, error)
}

// SelectTabCommand wraps Service.SelectTab.
type SelectTabCommand struct {
	service   selectTabService
	telemetry Telemetry
}

// NewSelectTabCommand builds the command.
func NewSelectTabCommand(service selectTabService, telemetry Telemetry) *SelectTabCommand {
	return &SelectTabCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectTabInput] = (*SelectTabCommand)(nil)

// Execute parses the tab name and selects it.
func (c *SelectTabCommand) Execute(ctx context.Context, msg SelectTabInput) error {
	if c.service == nil {
		return errors.New("select tab command requires service")
	}
	tab, err := audience.ParseTab(msg.Tab)
	if err != nil {
		return err
	}
	ctx = msg.Actor.bind(ctx)
	view, err := c.service.SelectTab(ctx, msg.SessionID, tab, msg.Viewer)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = view
	}
	c.telemetry.Record(ctx, "dashboard.command.select_tab", map[string]any{
		"session_id": msg.SessionID,
		"tab":        string(tab),
	})
	return nil
}

// ApplyAudiencesInput confirms the generated audiences of a session.
type ApplyAudiencesInput struct {
	SessionID string                  `json:"session_id"`
	Viewer    dashboard.ViewerContext `json:"viewer"`
	Actor     Actor                   `json:"actor"`
	Result    *dashboard.SessionView  `json:"-"`
}

type applyService interface {
	Apply(ctx context.Context, sessionID string, viewer dashboard.ViewerContext) (dashboard.SessionView, error)
}

// ApplyAudiencesCommand wraps Service.Apply.
type ApplyAudiencesCommand struct {
	service   applyService
	telemetry Telemetry
}

// NewApplyAudiencesCommand builds the command.
func NewApplyAudiencesCommand(service applyService, telemetry Telemetry) *ApplyAudiencesCommand {
	return &ApplyAudiencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyAudiencesInput] = (*ApplyAudiencesCommand)(nil)

// Execute applies the audiences and moves the session to the performance tab.
func (c *ApplyAudiencesCommand) Execute(ctx context.Context, msg ApplyAudiencesInput) error {
	if c.service == nil {
		return errors.New("apply command requires service")
	}
	ctx = msg.Actor.bind(ctx)
	view, err := c.service.Apply(ctx, msg.SessionID, msg.Viewer)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = view
	}
	c.telemetry.Record(ctx, "dashboard.command.apply", map[string]any{
		"session_id": msg.SessionID,
		"segments":   len(view.State.Audiences),
	})
	return nil
}
