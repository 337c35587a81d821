package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	dashboard "github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// SavePreferencesInput captures the viewer's dashboard toggles and layout overrides.
type SavePreferencesInput struct {
	Viewer               dashboard.ViewerContext `json:"viewer"`
	ChartView            string                  `json:"chart_view"`
	RecommendationFilter string                  `json:"recommendation_filter"`
	AreaOrder            map[string][]string     `json:"area_order"`
	HiddenWidgets        []string                `json:"hidden_widget_ids"`
	Actor                Actor                   `json:"actor"`
}

type preferenceService interface {
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, prefs dashboard.Preferences) error
}

// SavePreferencesCommand persists per-user dashboard preferences.
type SavePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSavePreferencesCommand creates the command.
func NewSavePreferencesCommand(service preferenceService, telemetry Telemetry) *SavePreferencesCommand {
	return &SavePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePreferencesInput] = (*SavePreferencesCommand)(nil)

// Execute stores the provided preferences for the viewer. Unknown chart views and
// filters fall back to radar and all.
func (c *SavePreferencesCommand) Execute(ctx context.Context, msg SavePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences command requires viewer user id")
	}
	prefs := dashboard.Preferences{
		Locale:               msg.Viewer.Locale,
		ChartView:            dashboard.ParseChartView(msg.ChartView),
		RecommendationFilter: audience.ParseRecommendationFilter(msg.RecommendationFilter),
		AreaOrder:            msg.AreaOrder,
		HiddenWidgets:        make(map[string]bool, len(msg.HiddenWidgets)),
	}
	for _, id := range msg.HiddenWidgets {
		prefs.HiddenWidgets[id] = true
	}
	ctx = msg.Actor.bind(ctx)
	if err := c.service.SavePreferences(ctx, msg.Viewer, prefs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.preferences.save", map[string]any{
		"user_id":    msg.Viewer.UserID,
		"chart_view": string(prefs.ChartView),
		"filter":     string(prefs.RecommendationFilter),
		"areas":      len(msg.AreaOrder),
		"hidden_cnt": len(msg.HiddenWidgets),
	})
	return nil
}
