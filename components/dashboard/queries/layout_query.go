package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// LayoutInput identifies the session whose active tab should be resolved.
type LayoutInput struct {
	Viewer    dashboard.ViewerContext
	SessionID string
}

type layoutService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext, sessionID string) (dashboard.Layout, error)
}

// LayoutQuery executes read-only layout resolution.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, dashboard.Layout] = (*LayoutQuery)(nil)

// Query resolves the active tab layout for the viewer.
func (q *LayoutQuery) Query(ctx context.Context, input LayoutInput) (dashboard.Layout, error) {
	return q.service.ConfigureLayout(ctx, input.Viewer, input.SessionID)
}
