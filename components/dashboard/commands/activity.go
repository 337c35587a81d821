package commands

import (
	"context"

	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// Actor identifies who issued a command. Zero values leave ctx untouched.
type Actor struct {
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

func (a Actor) bind(ctx context.Context) context.Context {
	if a == (Actor{}) {
		return ctx
	}
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID:   a.ActorID,
		RequestID: a.RequestID,
		Channel:   a.Channel,
	})
}
