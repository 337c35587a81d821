package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// Tab areas.
const (
	AreaTargeting   = "audience.tab.targeting"
	AreaInsights    = "audience.tab.insights"
	AreaPerformance = "audience.tab.performance"
)

// Built-in widget codes.
const (
	WidgetTargetingForm         = "audience.widget.targeting_form"
	WidgetSummaryTiles          = "audience.widget.summary_tiles"
	WidgetSegmentRadar          = "audience.widget.segment_radar"
	WidgetSegmentBars           = "audience.widget.segment_bars"
	WidgetRecommendations       = "audience.widget.recommendations"
	WidgetAIInsights            = "audience.widget.ai_insights"
	WidgetMatchGauge            = "audience.widget.match_gauge"
	WidgetPerformanceProjection = "audience.widget.performance_projection"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaTargeting, Name: "Audience Targeting", Description: "Campaign targeting form", Tab: audience.TabTargeting},
	{Code: AreaInsights, Name: "AI Insights", Description: "Generated segments, charts and recommendations", Tab: audience.TabInsights},
	{Code: AreaPerformance, Name: "Performance", Description: "Projected performance of applied segments", Tab: audience.TabPerformance},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: WidgetTargetingForm,
		Name: "Targeting Form",
		NameLocalized: map[string]string{
			"es": "Formulario de segmentación",
		},
		Description: "Collects campaign details and interests used to generate audiences.",
		Category:    "targeting",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"submit_label":             map[string]any{"type": "string", "default": "Generate AI Audience Recommendations"},
				"show_product_description": map[string]any{"type": "boolean", "default": true},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetSummaryTiles,
		Name: "Audience Summary",
		NameLocalized: map[string]string{
			"es": "Resumen de audiencias",
		},
		Description: "Segment count, total reach and average scores.",
		Category:    "stats",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tiles": map[string]any{
					"type":        "array",
					"uniqueItems": true,
					"items": map[string]any{
						"type": "string",
						"enum": []string{"segments", "reach", "match_rate", "conversion"},
					},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetSegmentRadar,
		Name:        "Segment Comparison (Radar)",
		Description: "Match rate, conversion potential and cost efficiency per segment.",
		Category:    "charts",
		Schema:      segmentChartSchema(),
	},
	{
		Code:        WidgetSegmentBars,
		Name:        "Segment Comparison (Bars)",
		Description: "Grouped bars with one series per segment.",
		Category:    "charts",
		Schema:      segmentChartSchema(),
	},
	{
		Code: WidgetRecommendations,
		Name: "Audience Recommendations",
		NameLocalized: map[string]string{
			"es": "Recomendaciones de audiencia",
		},
		Description: "Segment cards split into primary and secondary recommendations.",
		Category:    "insights",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filter": map[string]any{
					"type": "string",
					"enum": []string{
						string(audience.FilterAll),
						string(audience.FilterPrimary),
						string(audience.FilterSecondary),
					},
				},
				"show_demographics": map[string]any{"type": "boolean", "default": true},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetAIInsights,
		Name:        "AI Insights",
		Description: "Narrative guidance for the generated segments.",
		Category:    "insights",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sections": map[string]any{
					"type":        "array",
					"uniqueItems": true,
					"items": map[string]any{
						"type": "string",
						"enum": []string{"recommendations", "audience_insights", "messaging"},
					},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetMatchGauge,
		Name:        "Average Match Rate",
		Description: "Gauge of the batch's average match rate.",
		Category:    "charts",
		Schema:      segmentChartSchema(),
	},
	{
		Code: WidgetPerformanceProjection,
		Name: "Performance Projection",
		NameLocalized: map[string]string{
			"es": "Proyección de rendimiento",
		},
		Description: "Placeholder for campaign performance of applied segments.",
		Category:    "performance",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
}

func segmentChartSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string"},
			"subtitle": map[string]any{"type": "string"},
			"theme": map[string]any{
				"type": "string",
				"enum": []string{
					types.ThemeWesteros,
					types.ThemeWalden,
					types.ThemeWonderland,
					types.ThemeChalk,
				},
			},
			"show_chart_title": map[string]any{"type": "boolean", "default": false},
		},
		"additionalProperties": false,
	}
}

var defaultSeedConfigs = []AddWidgetRequest{
	{
		DefinitionID:  WidgetTargetingForm,
		AreaCode:      AreaTargeting,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetSummaryTiles,
		AreaCode:      AreaInsights,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetSegmentRadar,
		AreaCode:      AreaInsights,
		Configuration: map[string]any{"title": "Audience Segment Comparison"},
	},
	{
		DefinitionID:  WidgetSegmentBars,
		AreaCode:      AreaInsights,
		Configuration: map[string]any{"title": "Audience Segment Comparison"},
	},
	{
		DefinitionID:  WidgetRecommendations,
		AreaCode:      AreaInsights,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetAIInsights,
		AreaCode:      AreaInsights,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetMatchGauge,
		AreaCode:      AreaPerformance,
		Configuration: map[string]any{"title": "Average Match Rate"},
	},
	{
		DefinitionID:  WidgetPerformanceProjection,
		AreaCode:      AreaPerformance,
		Configuration: map[string]any{},
	},
}

// DefaultAreaDefinitions returns copies of the tab areas in navigation order.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns the starter layout for every tab.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		copyCfg.Configuration = cloneConfig(cfg.Configuration)
		out[i] = copyCfg
	}
	return out
}

// AreaForTab maps a tab to its widget area.
func AreaForTab(tab audience.Tab) (string, bool) {
	for _, area := range defaultAreaDefinitions {
		if area.Tab == tab {
			return area.Code, true
		}
	}
	return "", false
}

// TabForArea maps a widget area back to its tab.
func TabForArea(code string) (audience.Tab, bool) {
	for _, area := range defaultAreaDefinitions {
		if area.Code == code {
			return area.Tab, true
		}
	}
	return "", false
}

func cloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}
