package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// AddWidgetInput places a widget on a tab area.
type AddWidgetInput struct {
	Request dashboard.AddWidgetRequest `json:"request"`
	Actor   Actor                      `json:"actor"`
	Result  *dashboard.WidgetInstance  `json:"-"`
}

type assignService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.WidgetInstance, error)
}

// AssignWidgetCommand translates incoming requests into service calls and emits
// telemetry so operators can observe widget assignment activity.
type AssignWidgetCommand struct {
	service   assignService
	telemetry Telemetry
}

// NewAssignWidgetCommand creates a command instance.
func NewAssignWidgetCommand(service assignService, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AssignWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AssignWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.service == nil {
		return errors.New("assign command requires service")
	}
	ctx = msg.Actor.bind(ctx)
	instance, err := c.service.AddWidget(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = instance
	}
	c.telemetry.Record(ctx, "dashboard.widget.assign", map[string]any{
		"definition_id": msg.Request.DefinitionID,
		"area_code":     msg.Request.AreaCode,
		"widget_id":     instance.ID,
	})
	return nil
}
