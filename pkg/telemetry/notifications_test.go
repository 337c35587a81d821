package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
)

func TestAuditHookLogsSelectedReasons(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	hook := NewAuditHook(zap.New(core), "audience")
	ctx := context.Background()

	state := audience.State{Batch: 2, Audiences: audience.MockAudiences(audience.TargetingInput{})}
	require.NoError(t, hook.Publish(ctx, dashboard.RefreshEvent{Reason: "generation.completed", SessionID: "s-1", State: &state}))
	require.NoError(t, hook.Publish(ctx, dashboard.RefreshEvent{Reason: "tab.selected", SessionID: "s-1"}))
	require.NoError(t, hook.Publish(ctx, dashboard.RefreshEvent{Reason: "generation.failed", SessionID: "s-1", Error: "backend down"}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "audience", fields["channel"])
	assert.EqualValues(t, 2, fields["batch"])
	assert.EqualValues(t, 3, fields["audiences"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "backend down", entries[1].ContextMap()["error"])
}

func TestRefreshHooksFanOutToAudit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	broadcast := dashboard.NewBroadcastHook()
	events, cancel := broadcast.Subscribe("s-1")
	defer cancel()

	hooks := dashboard.RefreshHooks{broadcast, NewAuditHook(zap.New(core), "audience")}
	require.NoError(t, hooks.Publish(context.Background(), dashboard.RefreshEvent{Reason: "audiences.applied", SessionID: "s-1"}))

	evt := <-events
	assert.Equal(t, "audiences.applied", evt.Reason)
	assert.Equal(t, 1, logs.Len())
}
