package dashboard

import "context"

// ActivityContext identifies who triggered a dashboard operation and through which
// channel. Telemetry payloads carry it when present.
type ActivityContext struct {
	ActorID   string
	RequestID string
	Channel   string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ActivityFromContext extracts the activity context, if present.
func ActivityFromContext(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

func (a ActivityContext) annotate(payload map[string]any) map[string]any {
	if a == (ActivityContext{}) {
		return payload
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if a.ActorID != "" {
		payload["actor_id"] = a.ActorID
	}
	if a.RequestID != "" {
		payload["request_id"] = a.RequestID
	}
	if a.Channel != "" {
		payload["channel"] = a.Channel
	}
	return payload
}
