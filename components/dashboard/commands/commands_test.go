package commands

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

func TestSeedDashboardCommand(t *testing.T) {
	store := newStubStore()
	reg := &stubRegistry{}
	service := dashboard.NewService(dashboard.Options{WidgetStore: store})
	telemetry := &stubTelemetry{}
	cmd := NewSeedDashboardCommand(store, reg, service, telemetry)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{SeedLayout: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if store.ensureAreaCalls != len(dashboard.DefaultAreaDefinitions()) {
		t.Fatalf("expected %d areas, got %d", len(dashboard.DefaultAreaDefinitions()), store.ensureAreaCalls)
	}
	if reg.count != len(dashboard.DefaultWidgetDefinitions()) {
		t.Fatalf("expected registry count %d, got %d", len(dashboard.DefaultWidgetDefinitions()), reg.count)
	}
	if store.assignCalls != len(dashboard.DefaultSeedWidgets()) {
		t.Fatalf("expected %d assign calls, got %d", len(dashboard.DefaultSeedWidgets()), store.assignCalls)
	}
	if telemetry.calls == 0 {
		t.Fatalf("expected telemetry to record events")
	}
}

func TestSeedDashboardCommandRequiresStore(t *testing.T) {
	cmd := NewSeedDashboardCommand(nil, nil, nil, nil)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{}); err == nil {
		t.Fatalf("expected error without store")
	}
}

func TestAssignWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewAssignWidgetCommand(service, nil)
	var instance dashboard.WidgetInstance
	req := dashboard.AddWidgetRequest{DefinitionID: dashboard.WidgetSummaryTiles, AreaCode: dashboard.AreaInsights}
	if err := cmd.Execute(context.Background(), AddWidgetInput{Request: req, Result: &instance}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 1 {
		t.Fatalf("expected add call")
	}
	if instance.ID != "widget-1" {
		t.Fatalf("expected result populated, got %#v", instance)
	}
}

func TestRemoveWidgetCommandBindsActor(t *testing.T) {
	service := &stubService{}
	cmd := NewRemoveWidgetCommand(service, nil)
	err := cmd.Execute(context.Background(), RemoveWidgetInput{
		WidgetID: "widget-1",
		Actor:    Actor{ActorID: "user-1", Channel: "cli"},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.removeCalls != 1 {
		t.Fatalf("expected remove call")
	}
	if service.lastActivity.ActorID != "user-1" || service.lastActivity.Channel != "cli" {
		t.Fatalf("expected actor bound to context, got %#v", service.lastActivity)
	}
}

func TestReorderWidgetsCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewReorderWidgetsCommand(service, nil)
	if err := cmd.Execute(context.Background(), ReorderWidgetsInput{
		AreaCode:  dashboard.AreaInsights,
		WidgetIDs: []string{"w1", "w2"},
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.reorderCalls != 1 {
		t.Fatalf("expected reorder call")
	}
}

func TestRefreshDashboardCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshDashboardCommand(service, nil)
	event := dashboard.RefreshEvent{AreaCode: dashboard.AreaInsights}
	if err := cmd.Execute(context.Background(), RefreshDashboardInput{Event: event}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 {
		t.Fatalf("expected refresh call")
	}
	if service.lastEvent.Reason != "manual" {
		t.Fatalf("expected default reason, got %q", service.lastEvent.Reason)
	}
}

func TestSavePreferencesCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSavePreferencesCommand(service, nil)
	err := cmd.Execute(context.Background(), SavePreferencesInput{
		Viewer:               dashboard.ViewerContext{UserID: "user-1"},
		ChartView:            "bar",
		RecommendationFilter: "nonsense",
		HiddenWidgets:        []string{"w3"},
	})
	require.NoError(t, err)
	assert.Equal(t, dashboard.ChartViewBar, service.lastPrefs.ChartView)
	assert.Equal(t, audience.FilterAll, service.lastPrefs.RecommendationFilter)
	assert.True(t, service.lastPrefs.HiddenWidgets["w3"])

	err = cmd.Execute(context.Background(), SavePreferencesInput{})
	assert.Error(t, err)
}

func TestSessionCommandsAgainstService(t *testing.T) {
	ctx := context.Background()
	service := dashboard.NewService(dashboard.Options{Generator: audience.MockGenerator{}})
	t.Cleanup(service.Close)
	telemetry := &stubTelemetry{}

	var view dashboard.SessionView
	require.NoError(t, NewOpenSessionCommand(service, telemetry).Execute(ctx, OpenSessionInput{Result: &view}))
	require.NotEmpty(t, view.ID)

	selectTab := NewSelectTabCommand(service, telemetry)
	err := selectTab.Execute(ctx, SelectTabInput{SessionID: view.ID, Tab: "insights"})
	assert.True(t, audience.IsTabLocked(err))
	err = selectTab.Execute(ctx, SelectTabInput{SessionID: view.ID, Tab: "reports"})
	assert.Error(t, err)

	var result GenerateAudiencesResult
	require.NoError(t, NewGenerateAudiencesCommand(service, telemetry).Execute(ctx, GenerateAudiencesInput{
		SessionID: view.ID,
		Input:     audience.TargetingInput{CampaignName: "Launch", Industry: "retail", Interests: "Fitness, Tech"},
		Wait:      true,
		Result:    &result,
	}))
	assert.Equal(t, 1, result.Batch)
	require.Len(t, result.Records, 3)
	assert.Equal(t, []string{"Fitness", "Tech"}, result.Records[0].Interests[:2])

	var applied dashboard.SessionView
	require.NoError(t, NewApplyAudiencesCommand(service, telemetry).Execute(ctx, ApplyAudiencesInput{SessionID: view.ID, Result: &applied}))
	assert.Equal(t, audience.TabPerformance, applied.State.ActiveTab)

	var selected dashboard.SessionView
	require.NoError(t, selectTab.Execute(ctx, SelectTabInput{SessionID: view.ID, Tab: "Targeting", Result: &selected}))
	assert.Equal(t, audience.TabTargeting, selected.State.ActiveTab)
	assert.True(t, selected.State.HasAppliedAudiences)

	require.NoError(t, NewCloseSessionCommand(service, telemetry).Execute(ctx, CloseSessionInput{SessionID: view.ID}))
	assert.Zero(t, service.SessionCount())
	assert.Equal(t, 5, telemetry.calls)
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	checks := []error{
		NewOpenSessionCommand(nil, nil).Execute(ctx, OpenSessionInput{}),
		NewCloseSessionCommand(nil, nil).Execute(ctx, CloseSessionInput{}),
		NewGenerateAudiencesCommand(nil, nil).Execute(ctx, GenerateAudiencesInput{}),
		NewSelectTabCommand(nil, nil).Execute(ctx, SelectTabInput{}),
		NewApplyAudiencesCommand(nil, nil).Execute(ctx, ApplyAudiencesInput{}),
		NewAssignWidgetCommand(nil, nil).Execute(ctx, AddWidgetInput{}),
		NewRemoveWidgetCommand(nil, nil).Execute(ctx, RemoveWidgetInput{}),
		NewReorderWidgetsCommand(nil, nil).Execute(ctx, ReorderWidgetsInput{}),
		NewRefreshDashboardCommand(nil, nil).Execute(ctx, RefreshDashboardInput{}),
		NewSavePreferencesCommand(nil, nil).Execute(ctx, SavePreferencesInput{}),
	}
	for i, err := range checks {
		if err == nil {
			t.Fatalf("command %d: expected error without service", i)
		}
	}
}

func TestGenerateCommandPropagatesFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend unavailable")
	service := dashboard.NewService(dashboard.Options{
		Generator: audience.GeneratorFunc(func(context.Context, audience.TargetingInput) ([]audience.Record, error) {
			return nil, boom
		}),
	})
	t.Cleanup(service.Close)
	view, err := service.OpenSession(ctx, dashboard.ViewerContext{})
	require.NoError(t, err)

	err = NewGenerateAudiencesCommand(service, nil).Execute(ctx, GenerateAudiencesInput{
		SessionID: view.ID,
		Input:     audience.TargetingInput{CampaignName: "Launch", Industry: "retail"},
		Wait:      true,
	})
	assert.True(t, audience.IsGenerationFailed(err))
}

type stubService struct {
	addCalls     int
	removeCalls  int
	reorderCalls int
	refreshCalls int
	lastEvent    dashboard.RefreshEvent
	lastPrefs    dashboard.Preferences
	lastActivity dashboard.ActivityContext
}

func (s *stubService) AddWidget(_ context.Context, req dashboard.AddWidgetRequest) (dashboard.WidgetInstance, error) {
	s.addCalls++
	return dashboard.WidgetInstance{ID: "widget-1", DefinitionID: req.DefinitionID, AreaCode: req.AreaCode}, nil
}

func (s *stubService) RemoveWidget(ctx context.Context, _ string) error {
	s.removeCalls++
	s.lastActivity = dashboard.ActivityFromContext(ctx)
	return nil
}

func (s *stubService) ReorderWidgets(context.Context, string, []string) error {
	s.reorderCalls++
	return nil
}

func (s *stubService) NotifyRefresh(_ context.Context, event dashboard.RefreshEvent) error {
	s.refreshCalls++
	s.lastEvent = event
	return nil
}

func (s *stubService) SavePreferences(_ context.Context, _ dashboard.ViewerContext, prefs dashboard.Preferences) error {
	s.lastPrefs = prefs
	return nil
}

type stubRegistry struct {
	count int
}

func (s *stubRegistry) RegisterDefinition(def dashboard.WidgetDefinition) error {
	s.count++
	return nil
}

func (s *stubRegistry) RegisterProvider(string, dashboard.Provider) error { return nil }
func (s *stubRegistry) Definition(string) (dashboard.WidgetDefinition, bool) {
	return dashboard.WidgetDefinition{}, false
}
func (s *stubRegistry) Provider(string) (dashboard.Provider, bool) { return nil, false }
func (s *stubRegistry) Definitions() []dashboard.WidgetDefinition  { return nil }

type stubStore struct {
	ensureAreaCalls int
	assignCalls     int
}

func newStubStore() *stubStore { return &stubStore{} }

func (s *stubStore) EnsureArea(context.Context, dashboard.WidgetAreaDefinition) (bool, error) {
	s.ensureAreaCalls++
	return true, nil
}

func (s *stubStore) EnsureDefinition(context.Context, dashboard.WidgetDefinition) (bool, error) {
	return true, nil
}

func (s *stubStore) CreateInstance(ctx context.Context, input dashboard.CreateWidgetInstanceInput) (dashboard.WidgetInstance, error) {
	return dashboard.WidgetInstance{ID: input.DefinitionID + "-instance", DefinitionID: input.DefinitionID}, nil
}

func (s *stubStore) DeleteInstance(context.Context, string) error { return nil }

func (s *stubStore) AssignInstance(context.Context, dashboard.AssignWidgetInput) error {
	s.assignCalls++
	return nil
}

func (s *stubStore) ReorderArea(context.Context, dashboard.ReorderAreaInput) error { return nil }

func (s *stubStore) ResolveArea(context.Context, dashboard.ResolveAreaInput) (dashboard.ResolvedArea, error) {
	return dashboard.ResolvedArea{}, nil
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

func TestReorderWidgetsCommandValidates(t *testing.T) {
	service := &stubService{}
	err := NewReorderWidgetsCommand(service, nil).Execute(context.Background(), ReorderWidgetsInput{
		AreaCode: dashboard.AreaInsights,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if service.reorderCalls != 0 {
		t.Fatalf("service must not be called for invalid input")
	}
}
