package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/queries"
)

// Executor is the command and query surface transports call into.
type Executor interface {
	OpenSession(ctx context.Context, input commands.OpenSessionInput) error
	CloseSession(ctx context.Context, input commands.CloseSessionInput) error
	Generate(ctx context.Context, input commands.GenerateAudiencesInput) error
	SelectTab(ctx context.Context, input commands.SelectTabInput) error
	Apply(ctx context.Context, input commands.ApplyAudiencesInput) error
	Preferences(ctx context.Context, input commands.SavePreferencesInput) error
	Assign(ctx context.Context, input commands.AddWidgetInput) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	Refresh(ctx context.Context, input commands.RefreshDashboardInput) error

	Layout(ctx context.Context, input queries.LayoutInput) (dashboard.Layout, error)
	Session(ctx context.Context, input queries.SessionInput) (dashboard.SessionView, error)
	Insights(ctx context.Context, input queries.SessionInput) (audience.Insights, error)
	Area(ctx context.Context, input queries.WidgetAreaInput) (dashboard.ResolvedArea, error)
}

// CommandExecutor adapts go-command commanders and queriers to Executor. Unset
// fields answer with errNotConfigured.
type CommandExecutor struct {
	OpenSessionCommander  gocommand.Commander[commands.OpenSessionInput]
	CloseSessionCommander gocommand.Commander[commands.CloseSessionInput]
	GenerateCommander     gocommand.Commander[commands.GenerateAudiencesInput]
	SelectTabCommander    gocommand.Commander[commands.SelectTabInput]
	ApplyCommander        gocommand.Commander[commands.ApplyAudiencesInput]
	PreferencesCommander  gocommand.Commander[commands.SavePreferencesInput]
	AssignCommander       gocommand.Commander[commands.AddWidgetInput]
	RemoveCommander       gocommand.Commander[commands.RemoveWidgetInput]
	ReorderCommander      gocommand.Commander[commands.ReorderWidgetsInput]
	RefreshCommander      gocommand.Commander[commands.RefreshDashboardInput]

	LayoutQuerier   gocommand.Querier[queries.LayoutInput, dashboard.Layout]
	SessionQuerier  gocommand.Querier[queries.SessionInput, dashboard.SessionView]
	InsightsQuerier gocommand.Querier[queries.SessionInput, audience.Insights]
	AreaQuerier     gocommand.Querier[queries.WidgetAreaInput, dashboard.ResolvedArea]
}

var errNotConfigured = errors.New("httpapi: operation not configured")

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command and query against one dashboard service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		OpenSessionCommander:  commands.NewOpenSessionCommand(service, telemetry),
		CloseSessionCommander: commands.NewCloseSessionCommand(service, telemetry),
		GenerateCommander:     commands.NewGenerateAudiencesCommand(service, telemetry),
		SelectTabCommander:    commands.NewSelectTabCommand(service, telemetry),
		ApplyCommander:        commands.NewApplyAudiencesCommand(service, telemetry),
		PreferencesCommander:  commands.NewSavePreferencesCommand(service, telemetry),
		AssignCommander:       commands.NewAssignWidgetCommand(service, telemetry),
		RemoveCommander:       commands.NewRemoveWidgetCommand(service, telemetry),
		ReorderCommander:      commands.NewReorderWidgetsCommand(service, telemetry),
		RefreshCommander:      commands.NewRefreshDashboardCommand(service, telemetry),
		LayoutQuerier:         queries.NewLayoutQuery(service),
		SessionQuerier:        queries.NewSessionQuery(service),
		InsightsQuerier:       queries.NewInsightsQuery(service),
		AreaQuerier:           queries.NewWidgetAreaQuery(service),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func query[In, Out any](ctx context.Context, q gocommand.Querier[In, Out], input In) (Out, error) {
	if q == nil {
		var zero Out
		return zero, errNotConfigured
	}
	return q.Query(ctx, input)
}

func (e *CommandExecutor) OpenSession(ctx context.Context, input commands.OpenSessionInput) error {
	return execute(ctx, e.OpenSessionCommander, input)
}

func (e *CommandExecutor) CloseSession(ctx context.Context, input commands.CloseSessionInput) error {
	return execute(ctx, e.CloseSessionCommander, input)
}

func (e *CommandExecutor) Generate(ctx context.Context, input commands.GenerateAudiencesInput) error {
	return execute(ctx, e.GenerateCommander, input)
}

func (e *CommandExecutor) SelectTab(ctx context.Context, input commands.SelectTabInput) error {
	return execute(ctx, e.SelectTabCommander, input)
}

func (e *CommandExecutor) Apply(ctx context.Context, input commands.ApplyAudiencesInput) error {
	return execute(ctx, e.ApplyCommander, input)
}

func (e *CommandExecutor) Preferences(ctx context.Context, input commands.SavePreferencesInput) error {
	return execute(ctx, e.PreferencesCommander, input)
}

func (e *CommandExecutor) Assign(ctx context.Context, input commands.AddWidgetInput) error {
	return execute(ctx, e.AssignCommander, input)
}

func (e *CommandExecutor) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommander, input)
}

func (e *CommandExecutor) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderCommander, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshDashboardInput) error {
	return execute(ctx, e.RefreshCommander, input)
}

func (e *CommandExecutor) Layout(ctx context.Context, input queries.LayoutInput) (dashboard.Layout, error) {
	return query(ctx, e.LayoutQuerier, input)
}

func (e *CommandExecutor) Session(ctx context.Context, input queries.SessionInput) (dashboard.SessionView, error) {
	return query(ctx, e.SessionQuerier, input)
}

func (e *CommandExecutor) Insights(ctx context.Context, input queries.SessionInput) (audience.Insights, error) {
	return query(ctx, e.InsightsQuerier, input)
}

func (e *CommandExecutor) Area(ctx context.Context, input queries.WidgetAreaInput) (dashboard.ResolvedArea, error) {
	return query(ctx, e.AreaQuerier, input)
}
