package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// Validation text codes for malformed service requests.
const (
	TextCodeAreaRequired       = "AREA_REQUIRED"
	TextCodeDefinitionRequired = "DEFINITION_REQUIRED"
	TextCodeWidgetRequired     = "WIDGET_REQUIRED"
	TextCodeViewerRequired     = "VIEWER_REQUIRED"
	TextCodeSessionRequired    = "SESSION_REQUIRED"
)

var errMissingWidgetStore = goerrors.New("dashboard: widget store not configured", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal)

var (
	errInvalidArea       = requiredFieldError("area code", TextCodeAreaRequired)
	errInvalidDefinition = requiredFieldError("definition id", TextCodeDefinitionRequired)
	errInvalidWidget     = requiredFieldError("widget id", TextCodeWidgetRequired)
	errMissingViewer     = requiredFieldError("viewer user id", TextCodeViewerRequired)
	errMissingSession    = requiredFieldError("session id", TextCodeSessionRequired)
)

func requiredFieldError(field, textCode string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("dashboard: %s is required", field), goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(textCode)
}

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      TranslationService
	// Generator produces audience batches. Defaults to the mock generator behind
	// audience.DefaultLatency.
	Generator audience.Generator
	// SessionIdleTTL closes sessions idle for longer on SweepSessions. Zero disables it.
	SessionIdleTTL time.Duration
	// SessionOptions customise the session store (ids, clocks).
	SessionOptions []audience.StoreOption
	// ChartCache is purged of a session's charts when the session closes. When
	// Providers is nil the default registry renders charts through it.
	ChartCache *ChartCache
}

// Service orchestrates dashboard sessions and the widgets rendered for them.
type Service struct {
	opts     Options
	sessions *audience.Store
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		if opts.ChartCache == nil {
			opts.ChartCache = NewChartCache(DefaultChartCacheTTL)
		}
		opts.Providers = NewRegistry(WithChartCache(opts.ChartCache))
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Generator == nil {
		opts.Generator = audience.WithLatency(audience.MockGenerator{}, audience.DefaultLatency)
	}
	s := &Service{opts: opts}
	storeOpts := append([]audience.StoreOption{
		audience.WithIdleTTL(opts.SessionIdleTTL),
		audience.WithSessionOptions(audience.WithListener(s.onSessionEvent)),
	}, opts.SessionOptions...)
	s.sessions = audience.NewStore(opts.Generator, storeOpts...)
	return s
}

// Registry exposes the provider registry backing the service.
func (s *Service) Registry() ProviderRegistry {
	return s.opts.Providers
}

// WidgetStore exposes the configured widget store, or nil.
func (s *Service) WidgetStore() WidgetStore {
	return s.opts.WidgetStore
}

// OpenSession starts a dashboard session in the initial state.
func (s *Service) OpenSession(ctx context.Context, viewer ViewerContext) (SessionView, error) {
	session, err := s.sessions.Open(ctx)
	if err != nil {
		return SessionView{}, err
	}
	s.recordTelemetry(ctx, "dashboard.session.open", map[string]any{
		"session_id": session.ID(),
		"viewer":     viewer.UserID,
	})
	return s.sessionView(ctx, session.ID(), session.Snapshot(), viewer.Locale), nil
}

// CloseSession tears a session down. A pending generation is cancelled.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errMissingSession
	}
	return s.sessions.Close(ctx, sessionID)
}

// Session returns the current view of a session.
func (s *Service) Session(ctx context.Context, sessionID string, viewer ViewerContext) (SessionView, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return s.sessionView(ctx, sessionID, session.Snapshot(), viewer.Locale), nil
}

// Submit validates the targeting form and starts a generation job.
func (s *Service) Submit(ctx context.Context, sessionID string, input audience.TargetingInput) (*audience.Job, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	input = input.WithDefaults()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	job, err := session.Submit(ctx, input)
	if err != nil {
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.generation.submit", map[string]any{
		"session_id": sessionID,
		"batch":      job.Batch(),
		"industry":   input.Industry,
		"interests":  len(input.InterestList()),
	})
	return job, nil
}

// SelectTab switches the session's active tab.
func (s *Service) SelectTab(ctx context.Context, sessionID string, tab audience.Tab, viewer ViewerContext) (SessionView, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	state, err := session.SelectTab(tab)
	if err != nil {
		return SessionView{}, err
	}
	return s.sessionView(ctx, sessionID, state, viewer.Locale), nil
}

// Apply confirms the generated audiences and unlocks the performance tab.
func (s *Service) Apply(ctx context.Context, sessionID string, viewer ViewerContext) (SessionView, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	state, err := session.Apply()
	if err != nil {
		return SessionView{}, err
	}
	return s.sessionView(ctx, sessionID, state, viewer.Locale), nil
}

// Insights derives the summary, charts and recommendations for the session's batch.
func (s *Service) Insights(ctx context.Context, sessionID string) (audience.Insights, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return audience.Insights{}, err
	}
	return audience.Derive(session.Snapshot().Audiences), nil
}

// SweepSessions closes idle sessions and reports how many were closed.
func (s *Service) SweepSessions(ctx context.Context) int {
	closed := s.sessions.Sweep(ctx)
	if closed > 0 {
		s.recordTelemetry(ctx, "dashboard.session.sweep", map[string]any{"closed": closed})
	}
	return closed
}

// RunSessionSweeper sweeps every interval until ctx is done.
func (s *Service) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	s.sessions.Run(ctx, interval)
}

// SessionCount reports the number of live sessions.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

// Close tears down every live session.
func (s *Service) Close() {
	s.sessions.CloseAll()
}

func (s *Service) session(ctx context.Context, sessionID string) (*audience.Session, error) {
	if sessionID == "" {
		return nil, errMissingSession
	}
	return s.sessions.Get(ctx, sessionID)
}

func (s *Service) sessionView(ctx context.Context, id string, state audience.State, locale string) SessionView {
	return SessionView{
		ID:       id,
		State:    state,
		Tabs:     buildTabViews(ctx, s.opts.Translator, state, locale),
		CanApply: state.CanApply(),
	}
}

// onSessionEvent fans session transitions out to the refresh hook.
func (s *Service) onSessionEvent(evt audience.Event) {
	ctx := context.Background()
	state := evt.State
	area, _ := AreaForTab(state.ActiveTab)
	event := RefreshEvent{
		Reason:    string(evt.Kind),
		SessionID: evt.SessionID,
		AreaCode:  area,
		State:     &state,
	}
	payload := map[string]any{
		"session_id": evt.SessionID,
		"tab":        string(state.ActiveTab),
		"batch":      state.Batch,
		"audiences":  len(state.Audiences),
	}
	if evt.Err != nil {
		event.Error = evt.Err.Error()
		payload["error"] = event.Error
	}
	if evt.Kind == audience.EventSessionClosed && s.opts.ChartCache != nil {
		s.opts.ChartCache.Purge(evt.SessionID + ":")
	}
	s.recordTelemetry(ctx, "dashboard."+string(evt.Kind), payload)
	if err := s.opts.RefreshHook.Publish(ctx, event); err != nil {
		s.recordTelemetry(ctx, "dashboard.refresh.error", map[string]any{
			"session_id": evt.SessionID,
			"reason":     event.Reason,
			"error":      err.Error(),
		})
	}
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty"`
	Roles         []string       `json:"roles,omitempty"`
	StartAt       *time.Time     `json:"start_at,omitempty"`
	EndAt         *time.Time     `json:"end_at,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
}

// AddWidget creates a widget instance and assigns it to a tab area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (WidgetInstance, error) {
	store, err := s.widgetStore()
	if err != nil {
		return WidgetInstance{}, err
	}
	if req.AreaCode == "" {
		return WidgetInstance{}, errInvalidArea
	}
	if req.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return WidgetInstance{}, err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return WidgetInstance{}, err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return WidgetInstance{}, err
	}
	instance.AreaCode = req.AreaCode
	if err := s.opts.RefreshHook.Publish(ctx, RefreshEvent{
		Reason:   "widget.added",
		AreaCode: req.AreaCode,
		WidgetID: instance.ID,
	}); err != nil {
		return WidgetInstance{}, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	})
	return instance, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, ActivityFromContext(ctx).annotate(payload))
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidget
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.Publish(ctx, RefreshEvent{
		Reason:   "widget.removed",
		WidgetID: widgetID,
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{"widget_id": widgetID})
	return nil
}

// ReorderWidgets changes widget ordering within an area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return errInvalidArea
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{
		AreaCode:  areaCode,
		WidgetIDs: widgetIDs,
	}); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.Publish(ctx, RefreshEvent{
		Reason:   "widget.reordered",
		AreaCode: areaCode,
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.reorder", map[string]any{
		"area_code": areaCode,
		"count":     len(widgetIDs),
	})
	return nil
}

// ConfigureLayout resolves the widgets of the session's active tab, respecting
// preferences and authorization, with provider data attached.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext, sessionID string) (Layout, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return Layout{}, err
	}
	state := session.Snapshot()
	area, ok := AreaForTab(state.ActiveTab)
	if !ok {
		return Layout{}, fmt.Errorf("dashboard: no area for tab %q", state.ActiveTab)
	}
	widgets, prefs, err := s.resolveWidgets(ctx, viewer, sessionID, state, area)
	if err != nil {
		return Layout{}, err
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer":     viewer.UserID,
		"session_id": sessionID,
		"area_code":  area,
	})
	return Layout{
		Session:     s.sessionView(ctx, sessionID, state, viewer.Locale),
		AreaCode:    area,
		Widgets:     widgets,
		Preferences: prefs,
	}, nil
}

// ResolveArea retrieves a single tab area for the viewer. Locked tabs resolve too;
// their providers render the empty state.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, sessionID, areaCode string) (ResolvedArea, error) {
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return ResolvedArea{}, err
	}
	widgets, _, err := s.resolveWidgets(ctx, viewer, sessionID, session.Snapshot(), areaCode)
	if err != nil {
		return ResolvedArea{}, err
	}
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return ResolvedArea{AreaCode: areaCode, Widgets: widgets}, nil
}

func (s *Service) resolveWidgets(ctx context.Context, viewer ViewerContext, sessionID string, state audience.State, area string) ([]WidgetInstance, Preferences, error) {
	store, err := s.widgetStore()
	if err != nil {
		return nil, Preferences{}, err
	}
	prefs, err := s.opts.PreferenceStore.Preferences(ctx, viewer)
	if err != nil {
		return nil, Preferences{}, err
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: area,
		Roles:    viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return nil, Preferences{}, err
	}
	for i := range resolved.Widgets {
		resolved.Widgets[i].AreaCode = area
	}
	widgets := s.filterAuthorized(ctx, viewer, resolved.Widgets)
	widgets = applyOrderOverride(widgets, prefs.AreaOrder[area])
	widgets = applyHiddenFilter(widgets, prefs.HiddenWidgets)
	if area == AreaInsights {
		widgets = applyChartView(widgets, prefs.ChartView)
	}
	return s.attachProviderData(ctx, viewer, sessionID, state, prefs, widgets), prefs, nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return widgetNotFound("definition", definitionID)
	}
	if s.opts.ConfigValidator == nil {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) filterAuthorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	filtered := make([]WidgetInstance, 0, len(widgets))
	for _, w := range widgets {
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, sessionID string, state audience.State, prefs Preferences, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:    inst,
			Viewer:      viewer,
			SessionID:   sessionID,
			State:       state,
			Preferences: prefs,
			Translator:  s.opts.Translator,
		})
		if err != nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         err.Error(),
			})
			continue
		}
		metadata := make(map[string]any, len(inst.Metadata)+1)
		for k, v := range inst.Metadata {
			metadata[k] = v
		}
		metadata["data"] = data
		enriched[i].Metadata = metadata
	}
	return enriched
}

// NotifyRefresh exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyRefresh(ctx context.Context, event RefreshEvent) error {
	if err := s.opts.RefreshHook.Publish(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.refresh", map[string]any{
		"session_id": event.SessionID,
		"area_code":  event.AreaCode,
		"widget_id":  event.WidgetID,
		"reason":     event.Reason,
	})
	return nil
}

// Preferences returns the viewer's stored preferences or defaults.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext) (Preferences, error) {
	return s.opts.PreferenceStore.Preferences(ctx, viewer)
}

// SavePreferences persists per-viewer toggles and layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, prefs Preferences) error {
	if strings.TrimSpace(viewer.UserID) == "" {
		return errMissingViewer
	}
	normalizePreferences(&prefs)
	if err := s.opts.PreferenceStore.SavePreferences(ctx, viewer, prefs); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.preferences.save", map[string]any{
		"viewer":     viewer.UserID,
		"chart_view": string(prefs.ChartView),
		"filter":     string(prefs.RecommendationFilter),
	})
	return nil
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}

type noopRefreshHook struct{}

func (noopRefreshHook) Publish(context.Context, RefreshEvent) error {
	return nil
}
