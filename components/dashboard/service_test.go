package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

const (
	defaultWaitFor = time.Second
	defaultTick    = 5 * time.Millisecond
)

func validInput() audience.TargetingInput {
	return audience.TargetingInput{
		CampaignName: "Spring Launch",
		Industry:     "saas",
		Interests:    "Fitness, Tech",
	}
}

func instantGenerator() audience.Generator {
	return audience.MockGenerator{}
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.WidgetStore == nil {
		opts.WidgetStore = NewMemoryWidgetStore()
	}
	if opts.Generator == nil {
		opts.Generator = instantGenerator()
	}
	service := NewService(opts)
	require.NoError(t, Bootstrap(context.Background(), service))
	t.Cleanup(service.Close)
	return service
}

func generate(t *testing.T, service *Service, sessionID string) {
	t.Helper()
	job, err := service.Submit(context.Background(), sessionID, validInput())
	require.NoError(t, err)
	_, err = job.Wait(context.Background())
	require.NoError(t, err)
}

func widgetDefinitions(widgets []WidgetInstance) []string {
	out := make([]string, len(widgets))
	for i, w := range widgets {
		out[i] = w.DefinitionID
	}
	return out
}

func TestServiceSessionFlow(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, Options{})
	viewer := ViewerContext{UserID: "user-1", Locale: "en"}

	session, err := service.OpenSession(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, audience.TabTargeting, session.State.ActiveTab)
	require.Len(t, session.Tabs, 3)
	assert.True(t, session.Tabs[0].Active)
	assert.False(t, session.Tabs[1].Enabled)
	assert.False(t, session.CanApply)

	layout, err := service.ConfigureLayout(ctx, viewer, session.ID)
	require.NoError(t, err)
	assert.Equal(t, AreaTargeting, layout.AreaCode)
	assert.Equal(t, []string{WidgetTargetingForm}, widgetDefinitions(layout.Widgets))

	generate(t, service, session.ID)

	view, err := service.Session(ctx, session.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, audience.TabInsights, view.State.ActiveTab)
	assert.Len(t, view.State.Audiences, 3)
	assert.True(t, view.CanApply)

	layout, err = service.ConfigureLayout(ctx, viewer, session.ID)
	require.NoError(t, err)
	assert.Equal(t, AreaInsights, layout.AreaCode)
	assert.Equal(t, []string{WidgetSummaryTiles, WidgetSegmentRadar, WidgetRecommendations, WidgetAIInsights}, widgetDefinitions(layout.Widgets))
	tiles := layout.Widgets[0].Data()
	require.NotNil(t, tiles)
	assert.Equal(t, true, tiles["has_data"])

	_, err = service.SelectTab(ctx, session.ID, audience.TabPerformance, viewer)
	assert.True(t, audience.IsTabLocked(err))

	applied, err := service.Apply(ctx, session.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, audience.TabPerformance, applied.State.ActiveTab)
	assert.True(t, applied.State.HasAppliedAudiences)

	layout, err = service.ConfigureLayout(ctx, viewer, session.ID)
	require.NoError(t, err)
	assert.Equal(t, AreaPerformance, layout.AreaCode)
	assert.Equal(t, []string{WidgetMatchGauge, WidgetPerformanceProjection}, widgetDefinitions(layout.Widgets))

	back, err := service.SelectTab(ctx, session.ID, audience.TabInsights, viewer)
	require.NoError(t, err)
	assert.Equal(t, audience.TabInsights, back.State.ActiveTab)

	insights, err := service.Insights(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, insights.Summary.SegmentCount)

	require.NoError(t, service.CloseSession(ctx, session.ID))
	_, err = service.Session(ctx, session.ID, viewer)
	assert.True(t, audience.IsSessionNotFound(err))
	assert.Zero(t, service.SessionCount())
}

func TestServiceSubmitValidatesInput(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, Options{})
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	_, err = service.Submit(ctx, session.ID, audience.TargetingInput{Industry: "saas"})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	view, err := service.Session(ctx, session.ID, ViewerContext{})
	require.NoError(t, err)
	assert.False(t, view.State.IsLoading)
	assert.Zero(t, view.State.Batch)
}

func TestServiceRequiresSessionID(t *testing.T) {
	service := newTestService(t, Options{})
	_, err := service.ConfigureLayout(context.Background(), ViewerContext{}, "")
	assert.ErrorIs(t, err, errMissingSession)
	assert.ErrorIs(t, service.CloseSession(context.Background(), ""), errMissingSession)

	_, err = service.Submit(context.Background(), "missing", validInput())
	assert.True(t, audience.IsSessionNotFound(err))
}

func TestServiceGenerationFailureShowsBanner(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("model offline")
	service := newTestService(t, Options{
		Generator: audience.GeneratorFunc(func(context.Context, audience.TargetingInput) ([]audience.Record, error) {
			return nil, boom
		}),
	})
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	job, err := service.Submit(ctx, session.ID, validInput())
	require.NoError(t, err)
	_, err = job.Wait(ctx)
	assert.True(t, audience.IsGenerationFailed(err))

	layout, err := service.ConfigureLayout(ctx, ViewerContext{}, session.ID)
	require.NoError(t, err)
	assert.Equal(t, AreaTargeting, layout.AreaCode)
	assert.Contains(t, layout.Session.State.Error, "model offline")
	form := layout.Widgets[0].Data()
	assert.Equal(t, layout.Session.State.Error, form["error"])
}

func TestServicePublishesSessionEvents(t *testing.T) {
	ctx := context.Background()
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := newTestService(t, Options{RefreshHook: hook, Telemetry: telemetry})
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)
	seeded := hook.count()

	generate(t, service, session.ID)
	require.NoError(t, service.CloseSession(ctx, session.ID))

	reasons := hook.reasons()[seeded:]
	assert.Equal(t, []string{
		string(audience.EventGenerationStarted),
		string(audience.EventGenerationCompleted),
		string(audience.EventSessionClosed),
	}, reasons)
	last := hook.last()
	assert.Equal(t, session.ID, last.SessionID)
	require.NotNil(t, last.State)
	assert.True(t, telemetry.has("dashboard.generation.completed"))
	assert.True(t, telemetry.has("dashboard.generation.submit"))
}

func TestServiceRefreshErrorsRecordTelemetry(t *testing.T) {
	ctx := context.Background()
	telemetry := &testTelemetry{}
	service := NewService(Options{
		Generator:   instantGenerator(),
		RefreshHook: failingHook{err: errors.New("transport down")},
		Telemetry:   telemetry,
	})
	t.Cleanup(service.Close)
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)
	generate(t, service, session.ID)
	assert.True(t, telemetry.has("dashboard.refresh.error"))
}

func TestServiceCloseSessionPurgesCharts(t *testing.T) {
	ctx := context.Background()
	cache := NewChartCache(time.Minute)
	registry := NewRegistry(WithChartCache(cache))
	service := newTestService(t, Options{Providers: registry, ChartCache: cache})
	viewer := ViewerContext{UserID: "user-1", Locale: "en"}

	session, err := service.OpenSession(ctx, viewer)
	require.NoError(t, err)
	generate(t, service, session.ID)
	_, err = service.ConfigureLayout(ctx, viewer, session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	require.NoError(t, service.CloseSession(ctx, session.ID))
	assert.Zero(t, cache.Len())
}

func TestConfigureLayoutFiltersByAuthorizer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryWidgetStore()
	service := newTestService(t, Options{
		WidgetStore: store,
		Authorizer:  denyDefinitionAuthorizer{denied: WidgetSummaryTiles},
	})
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)
	generate(t, service, session.ID)

	layout, err := service.ConfigureLayout(ctx, ViewerContext{}, session.ID)
	require.NoError(t, err)
	assert.NotContains(t, widgetDefinitions(layout.Widgets), WidgetSummaryTiles)
}

func TestConfigureLayoutAppliesPreferences(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, Options{})
	viewer := ViewerContext{UserID: "user-2", Locale: "en"}
	session, err := service.OpenSession(ctx, viewer)
	require.NoError(t, err)
	generate(t, service, session.ID)

	area, err := service.ResolveArea(ctx, viewer, session.ID, AreaInsights)
	require.NoError(t, err)
	byDef := map[string]string{}
	for _, w := range area.Widgets {
		byDef[w.DefinitionID] = w.ID
	}

	require.NoError(t, service.SavePreferences(ctx, viewer, Preferences{
		ChartView: ChartViewBar,
		AreaOrder: map[string][]string{
			AreaInsights: {byDef[WidgetRecommendations], byDef[WidgetSummaryTiles]},
		},
		HiddenWidgets: map[string]bool{byDef[WidgetAIInsights]: true},
	}))

	layout, err := service.ConfigureLayout(ctx, viewer, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{WidgetRecommendations, WidgetSummaryTiles, WidgetSegmentBars}, widgetDefinitions(layout.Widgets))
	assert.Equal(t, ChartViewBar, layout.Preferences.ChartView)
}

func TestResolveAreaAllowsLockedTabs(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, Options{})
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	area, err := service.ResolveArea(ctx, ViewerContext{}, session.ID, AreaInsights)
	require.NoError(t, err)
	require.NotEmpty(t, area.Widgets)
	for _, w := range area.Widgets {
		if w.DefinitionID == WidgetSegmentRadar {
			assert.Equal(t, false, w.Data()["has_data"])
		}
	}

	_, err = service.ResolveArea(ctx, ViewerContext{}, session.ID, "")
	assert.ErrorIs(t, err, errInvalidArea)
}

func TestAddWidgetEmitsRefreshHook(t *testing.T) {
	ctx := context.Background()
	hook := &collectingHook{}
	service := newTestService(t, Options{RefreshHook: hook})
	before := hook.count()

	position := 0
	instance, err := service.AddWidget(ctx, AddWidgetRequest{
		DefinitionID:  WidgetSummaryTiles,
		AreaCode:      AreaPerformance,
		Configuration: map[string]any{"tiles": []any{"reach"}},
		Position:      &position,
	})
	require.NoError(t, err)
	assert.Equal(t, AreaPerformance, instance.AreaCode)
	assert.Equal(t, before+1, hook.count())
	assert.Equal(t, "widget.added", hook.last().Reason)
	assert.Equal(t, instance.ID, hook.last().WidgetID)
}

func TestAddWidgetValidatesInputs(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, Options{})

	_, err := service.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetSummaryTiles})
	assert.ErrorIs(t, err, errInvalidArea)

	_, err = service.AddWidget(ctx, AddWidgetRequest{AreaCode: AreaInsights})
	assert.ErrorIs(t, err, errInvalidDefinition)

	_, err = service.AddWidget(ctx, AddWidgetRequest{AreaCode: AreaInsights, DefinitionID: "audience.widget.unknown"})
	assert.True(t, goerrors.IsNotFound(err))

	_, err = service.AddWidget(ctx, AddWidgetRequest{
		AreaCode:      AreaInsights,
		DefinitionID:  WidgetSummaryTiles,
		Configuration: map[string]any{"tiles": []any{"bogus"}},
	})
	assert.True(t, goerrors.IsValidation(err))

	_, err = NewService(Options{}).AddWidget(ctx, AddWidgetRequest{AreaCode: AreaInsights, DefinitionID: WidgetSummaryTiles})
	assert.ErrorIs(t, err, errMissingWidgetStore)
}

func TestRemoveAndReorderWidgets(t *testing.T) {
	ctx := context.Background()
	hook := &collectingHook{}
	service := newTestService(t, Options{RefreshHook: hook})
	session, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)

	area, err := service.ResolveArea(ctx, ViewerContext{}, session.ID, AreaPerformance)
	require.NoError(t, err)
	require.Len(t, area.Widgets, 2)
	gauge, projection := area.Widgets[0].ID, area.Widgets[1].ID

	require.NoError(t, service.ReorderWidgets(ctx, AreaPerformance, []string{projection, gauge}))
	assert.Equal(t, "widget.reordered", hook.last().Reason)
	area, err = service.ResolveArea(ctx, ViewerContext{}, session.ID, AreaPerformance)
	require.NoError(t, err)
	assert.Equal(t, []string{WidgetPerformanceProjection, WidgetMatchGauge}, widgetDefinitions(area.Widgets))

	require.NoError(t, service.RemoveWidget(ctx, gauge))
	assert.Equal(t, "widget.removed", hook.last().Reason)
	area, err = service.ResolveArea(ctx, ViewerContext{}, session.ID, AreaPerformance)
	require.NoError(t, err)
	assert.Equal(t, []string{WidgetPerformanceProjection}, widgetDefinitions(area.Widgets))

	assert.True(t, goerrors.IsNotFound(service.RemoveWidget(ctx, gauge)))
	assert.ErrorIs(t, service.RemoveWidget(ctx, ""), errInvalidWidget)
	assert.ErrorIs(t, service.ReorderWidgets(ctx, "", nil), errInvalidArea)
}

func TestSavePreferencesRequiresUser(t *testing.T) {
	service := NewService(Options{})
	err := service.SavePreferences(context.Background(), ViewerContext{}, Preferences{})
	assert.ErrorIs(t, err, errMissingViewer)
}

func TestSavePreferencesNormalizesAndRecords(t *testing.T) {
	ctx := context.Background()
	telemetry := &testTelemetry{}
	service := NewService(Options{Telemetry: telemetry})
	viewer := ViewerContext{UserID: "user-4"}

	require.NoError(t, service.SavePreferences(ctx, viewer, Preferences{
		ChartView:            "pie",
		RecommendationFilter: audience.FilterSecondary,
		HiddenWidgets:        map[string]bool{"w3": true},
	}))
	stored, err := service.Preferences(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, ChartViewRadar, stored.ChartView)
	assert.Equal(t, audience.FilterSecondary, stored.RecommendationFilter)
	assert.True(t, stored.HiddenWidgets["w3"])
	assert.True(t, telemetry.has("dashboard.preferences.save"))
}

func TestNotifyRefreshTelemetry(t *testing.T) {
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := NewService(Options{RefreshHook: hook, Telemetry: telemetry})
	event := RefreshEvent{AreaCode: AreaInsights, WidgetID: "w1", Reason: "custom"}
	require.NoError(t, service.NotifyRefresh(context.Background(), event))
	assert.Equal(t, 1, hook.count())
	assert.True(t, telemetry.has("dashboard.refresh"))
}

func TestSweepSessionsClosesIdle(t *testing.T) {
	ctx := context.Background()
	service := NewService(Options{
		Generator:      instantGenerator(),
		SessionIdleTTL: 1,
	})
	t.Cleanup(service.Close)
	_, err := service.OpenSession(ctx, ViewerContext{})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return service.SweepSessions(ctx) == 1 }, defaultWaitFor, defaultTick)
	assert.Zero(t, service.SessionCount())
}

type denyDefinitionAuthorizer struct {
	denied string
}

func (a denyDefinitionAuthorizer) CanViewWidget(_ context.Context, _ ViewerContext, instance WidgetInstance) bool {
	return instance.DefinitionID != a.denied
}

type collectingHook struct {
	mu     sync.Mutex
	events []RefreshEvent
}

func (h *collectingHook) Publish(_ context.Context, event RefreshEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *collectingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func (h *collectingHook) reasons() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Reason
	}
	return out
}

func (h *collectingHook) last() RefreshEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return RefreshEvent{}
	}
	return h.events[len(h.events)-1]
}

var _ RefreshHook = (*collectingHook)(nil)

type testTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *testTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *testTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

func TestTelemetryCarriesActivityContext(t *testing.T) {
	var payload map[string]any
	service := NewService(Options{
		Telemetry: TelemetryFunc(func(_ context.Context, event string, p map[string]any) {
			if event == "dashboard.preferences.save" {
				payload = p
			}
		}),
	})
	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "user-9", RequestID: "req-1", Channel: "http"})
	require.NoError(t, service.SavePreferences(ctx, ViewerContext{UserID: "user-9"}, Preferences{}))
	require.NotNil(t, payload)
	assert.Equal(t, "user-9", payload["actor_id"])
	assert.Equal(t, "req-1", payload["request_id"])
	assert.Equal(t, "http", payload["channel"])
}

func TestDefaultProvidersShareThePurgedCache(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, Options{})
	require.NotNil(t, service.opts.ChartCache)
	viewer := ViewerContext{UserID: "user-1", Locale: "en"}

	session, err := service.OpenSession(ctx, viewer)
	require.NoError(t, err)
	generate(t, service, session.ID)
	_, err = service.ConfigureLayout(ctx, viewer, session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, service.opts.ChartCache.Len())

	require.NoError(t, service.CloseSession(ctx, session.ID))
	assert.Zero(t, service.opts.ChartCache.Len())
}
