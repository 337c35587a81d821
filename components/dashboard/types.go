package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// WidgetStore persists tab areas, widget definitions and their placed instances.
// Implementations ensure thread safety and idempotency.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer determines if a viewer can see a widget instance.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore returns per-viewer preferences.
type PreferenceStore interface {
	Preferences(ctx context.Context, viewer ViewerContext) (Preferences, error)
	SavePreferences(ctx context.Context, viewer ViewerContext, prefs Preferences) error
}

// ProviderRegistry stores widget definitions/providers discoverable via hooks or manifests.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket/SSE) about session and layout changes.
type RefreshHook interface {
	Publish(ctx context.Context, event RefreshEvent) error
}

// WidgetAreaDefinition models a widget area. Every dashboard tab owns one area.
type WidgetAreaDefinition struct {
	Code        string       `json:"code" yaml:"code"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tab         audience.Tab `json:"tab,omitempty" yaml:"tab,omitempty"`
}

// WidgetDefinition describes a widget and the JSON schema of its configuration.
type WidgetDefinition struct {
	Code                 string            `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Schema               map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category             string            `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance is a configured widget placed in an area.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition"`
	AreaCode      string         `json:"area"`
	Configuration map[string]any `json:"config,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Data returns the provider payload attached during layout resolution.
func (w WidgetInstance) Data() WidgetData {
	if w.Metadata == nil {
		return nil
	}
	data, _ := w.Metadata["data"].(WidgetData)
	return data
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// WidgetVisibility defines runtime visibility constraints.
type WidgetVisibility struct {
	Roles   []string
	StartAt *time.Time
	EndAt   *time.Time
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput represents a new ordering for widgets within an area.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput requests widget instances for a given area.
type ResolveAreaInput struct {
	AreaCode string
	Roles    []string
	Locale   string
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string           `json:"area"`
	Widgets  []WidgetInstance `json:"widgets"`
}

// ChartView selects which segment chart the insights tab shows.
type ChartView string

const (
	ChartViewRadar ChartView = "radar"
	ChartViewBar   ChartView = "bar"
)

// ParseChartView falls back to the radar view.
func ParseChartView(value string) ChartView {
	if ChartView(value) == ChartViewBar {
		return ChartViewBar
	}
	return ChartViewRadar
}

// Preferences captures per-viewer adjustments.
type Preferences struct {
	Locale               string                        `json:"locale,omitempty"`
	ChartView            ChartView                     `json:"chart_view"`
	RecommendationFilter audience.RecommendationFilter `json:"recommendation_filter"`
	AreaOrder            map[string][]string           `json:"area_order,omitempty"`
	HiddenWidgets        map[string]bool               `json:"hidden_widgets,omitempty"`
}

// ViewerContext captures the active user/locale information needed to render dashboards.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// TabView is one entry of the tab strip.
type TabView struct {
	Tab      audience.Tab `json:"tab"`
	Label    string       `json:"label"`
	AreaCode string       `json:"area"`
	Active   bool         `json:"active"`
	Enabled  bool         `json:"enabled"`
}

// SessionView is the externally visible state of one dashboard session.
type SessionView struct {
	ID       string         `json:"id"`
	State    audience.State `json:"state"`
	Tabs     []TabView      `json:"tabs"`
	CanApply bool           `json:"can_apply"`
}

// Layout is the resolved active tab of a session.
type Layout struct {
	Session     SessionView      `json:"session"`
	AreaCode    string           `json:"area"`
	Widgets     []WidgetInstance `json:"widgets"`
	Preferences Preferences      `json:"preferences"`
}

// RefreshEvent describes changes that transports might care about.
type RefreshEvent struct {
	Reason    string          `json:"reason"`
	SessionID string          `json:"session_id,omitempty"`
	AreaCode  string          `json:"area,omitempty"`
	WidgetID  string          `json:"widget_id,omitempty"`
	State     *audience.State `json:"state,omitempty"`
	Error     string          `json:"error,omitempty"`
}
