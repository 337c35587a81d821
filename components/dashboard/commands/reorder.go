package commands

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
)

// ReorderWidgetsInput orders the widgets of one tab area.
type ReorderWidgetsInput struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
	Actor     Actor    `json:"actor"`
}

// Validate requires an area and at least one widget id.
func (in ReorderWidgetsInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.AreaCode, validation.Required.Error("area code is required")),
		validation.Field(&in.WidgetIDs, validation.Required.Error("widget ids are required"), validation.Each(validation.Required)),
	)
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "commands: invalid reorder request").
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("REORDER_INVALID")
}

type reorderService interface {
	ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error
}

// ReorderWidgetsCommand wraps Service.ReorderWidgets.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute validates the payload and stores the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	ctx = msg.Actor.bind(ctx)
	if err := c.service.ReorderWidgets(ctx, msg.AreaCode, msg.WidgetIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.widgets.reordered", map[string]any{
		"area_code":  msg.AreaCode,
		"widget_ids": msg.WidgetIDs,
	})
	return nil
}
