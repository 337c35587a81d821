package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// SessionInput identifies a session.
type SessionInput struct {
	Viewer    dashboard.ViewerContext
	SessionID string
}

type insightsService interface {
	Insights(ctx context.Context, sessionID string) (audience.Insights, error)
}

// InsightsQuery derives the summary, chart rows and recommendations of a session.
type InsightsQuery struct {
	service insightsService
}

// NewInsightsQuery builds the query.
func NewInsightsQuery(service insightsService) *InsightsQuery {
	return &InsightsQuery{service: service}
}

var _ gocommand.Querier[SessionInput, audience.Insights] = (*InsightsQuery)(nil)

// Query derives the insights of the session's current batch.
func (q *InsightsQuery) Query(ctx context.Context, input SessionInput) (audience.Insights, error) {
	return q.service.Insights(ctx, input.SessionID)
}

type sessionService interface {
	Session(ctx context.Context, sessionID string, viewer dashboard.ViewerContext) (dashboard.SessionView, error)
}

// SessionQuery returns the tab strip and state of a session.
type SessionQuery struct {
	service sessionService
}

// NewSessionQuery builds the query.
func NewSessionQuery(service sessionService) *SessionQuery {
	return &SessionQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.SessionView] = (*SessionQuery)(nil)

// Query returns the session view.
func (q *SessionQuery) Query(ctx context.Context, input SessionInput) (dashboard.SessionView, error) {
	return q.service.Session(ctx, input.SessionID, input.Viewer)
}
