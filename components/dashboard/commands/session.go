package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// OpenSessionInput starts a dashboard session. Result, when set, receives the new
// session view.
type OpenSessionInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Actor  Actor                   `json:"actor"`
	Result *dashboard.SessionView  `json:"-"`
}

type openSessionService interface {
	OpenSession(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.SessionView, error)
}

// OpenSessionCommand wraps Service.OpenSession.
type OpenSessionCommand struct {
	service   openSessionService
	telemetry Telemetry
}

// NewOpenSessionCommand builds the command.
func NewOpenSessionCommand(service openSessionService, telemetry Telemetry) *OpenSessionCommand {
	return &OpenSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenSessionInput] = (*OpenSessionCommand)(nil)

// Execute opens the session.
func (c *OpenSessionCommand) Execute(ctx context.Context, msg OpenSessionInput) error {
	if c.service == nil {
		return errors.New("open session command requires service")
	}
	ctx = msg.Actor.bind(ctx)
	view, err := c.service.OpenSession(ctx, msg.Viewer)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = view
	}
	c.telemetry.Record(ctx, "dashboard.command.open_session", map[string]any{"session_id": view.ID})
	return nil
}

// CloseSessionInput tears a session down.
type CloseSessionInput struct {
	SessionID string `json:"session_id"`
	Actor     Actor  `json:"actor"`
}

type closeSessionService interface {
	CloseSession(ctx context.Context, sessionID string) error
}

// CloseSessionCommand wraps Service.CloseSession.
type CloseSessionCommand struct {
	service   closeSessionService
	telemetry Telemetry
}

// NewCloseSessionCommand builds the command.
func NewCloseSessionCommand(service closeSessionService, telemetry Telemetry) *CloseSessionCommand {
	return &CloseSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CloseSessionInput] = (*CloseSessionCommand)(nil)

// Execute closes the session, cancelling a pending generation.
func (c *CloseSessionCommand) Execute(ctx context.Context, msg CloseSessionInput) error {
	if c.service == nil {
		return errors.New("close session command requires service")
	}
	ctx = msg.Actor.bind(ctx)
	if err := c.service.CloseSession(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.close_session", map[string]any{"session_id": msg.SessionID})
	return nil
}
