package dashboard

import (
	"context"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// DefaultProviders returns the providers backing the built-in widget definitions.
// chartOpts apply to the radar, bar and gauge chart providers.
func DefaultProviders(chartOpts ...EChartsProviderOption) map[string]Provider {
	return map[string]Provider{
		WidgetTargetingForm:         ProviderFunc(targetingFormProvider),
		WidgetSummaryTiles:          ProviderFunc(summaryTilesProvider),
		WidgetSegmentRadar:          NewEChartsProvider(types.ChartRadar, chartOpts...),
		WidgetSegmentBars:           NewEChartsProvider(types.ChartBar, chartOpts...),
		WidgetRecommendations:       ProviderFunc(recommendationsProvider),
		WidgetAIInsights:            ProviderFunc(aiInsightsProvider),
		WidgetMatchGauge:            NewEChartsProvider(types.ChartGauge, chartOpts...),
		WidgetPerformanceProjection: ProviderFunc(performanceProjectionProvider),
	}
}

func targetingFormProvider(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	locale := meta.Viewer.Locale
	submit := stringValue(cfg["submit_label"], "Generate AI Audience Recommendations")
	return WidgetData{
		"title":                    translateOrFallback(ctx, meta.Translator, "dashboard.targeting.title", locale, "Define Your Target Audience", nil),
		"submit_label":             translateOrFallback(ctx, meta.Translator, "dashboard.targeting.submit", locale, submit, nil),
		"loading_label":            translateOrFallback(ctx, meta.Translator, "dashboard.targeting.loading", locale, "Generating Audiences...", nil),
		"show_product_description": boolValueOr(cfg["show_product_description"], true),
		"defaults":                 audience.DefaultTargetingInput(),
		"options": map[string]any{
			"industries":     audience.Industries,
			"objectives":     audience.CampaignObjectives,
			"budgets":        audience.BudgetLevels,
			"age_min":        audience.MinTargetAge,
			"age_max":        audience.MaxTargetAge,
			"interests_hint": "Separate interests with commas",
		},
		"is_loading": meta.State.IsLoading,
		"error":      meta.State.Error,
	}, nil
}

var defaultSummaryTiles = []string{"segments", "reach", "match_rate", "conversion"}

func summaryTilesProvider(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	locale := meta.Viewer.Locale
	summary := audience.Summarize(meta.State.Audiences)
	keys := stringSliceValue(meta.Instance.Configuration["tiles"])
	if len(keys) == 0 {
		keys = defaultSummaryTiles
	}
	tiles := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		var (
			label   string
			value   int
			display string
		)
		switch key {
		case "segments":
			label, value = "Audience Segments", summary.SegmentCount
			display = formatNumber(locale, value)
		case "reach":
			label, value = "Total Potential Reach", summary.TotalReach
			display = formatNumber(locale, value)
		case "match_rate":
			label, value = "Average Match Rate", summary.AvgMatchRate
			display = formatPercent(value)
		case "conversion":
			label, value = "Avg. Conv. Potential", summary.AvgConversionPotential
			display = formatPercent(value)
		default:
			continue
		}
		tiles = append(tiles, map[string]any{
			"key":     key,
			"label":   translateOrFallback(ctx, meta.Translator, "dashboard.summary."+key, locale, label, nil),
			"value":   value,
			"display": display,
		})
	}
	return WidgetData{
		"has_data": summary.HasData(),
		"summary":  summary,
		"tiles":    tiles,
	}, nil
}

func recommendationsProvider(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	locale := meta.Viewer.Locale
	filter := meta.Preferences.RecommendationFilter
	if raw := stringValue(cfg["filter"], ""); raw != "" {
		filter = audience.ParseRecommendationFilter(raw)
	}
	filter = audience.ParseRecommendationFilter(string(filter))

	recs := audience.Recommend(meta.State.Audiences)
	view := recs.View(filter)
	cards := make([]map[string]any, 0, len(view))
	for _, record := range view {
		cards = append(cards, recommendationCard(locale, record))
	}
	return WidgetData{
		"title":    translateOrFallback(ctx, meta.Translator, "dashboard.recommendations.title", locale, "AI Audience Recommendations", nil),
		"subtitle": translateOrFallback(ctx, meta.Translator, "dashboard.recommendations.subtitle", locale, "Ranked by AI model match score.", nil),
		"filter":   string(filter),
		"counts": map[string]int{
			string(audience.FilterAll):       len(recs.All),
			string(audience.FilterPrimary):   len(recs.Primary),
			string(audience.FilterSecondary): len(recs.Secondary),
		},
		"cards":             cards,
		"has_data":          len(recs.All) > 0,
		"show_demographics": boolValueOr(cfg["show_demographics"], true),
		"can_apply":         meta.State.CanApply(),
		"apply_label":       translateOrFallback(ctx, meta.Translator, "dashboard.recommendations.apply", locale, "Apply These Audience Segments", nil),
		"empty_message":     translateOrFallback(ctx, meta.Translator, "dashboard.insights.empty", locale, emptyInsightsCopy, nil),
	}, nil
}

func recommendationCard(locale string, record audience.Record) map[string]any {
	return map[string]any{
		"id":                   record.ID,
		"name":                 record.Name,
		"match_rate":           record.MatchRate,
		"conversion_potential": record.ConversionPotential,
		"cost_efficiency":      record.CostEfficiency,
		"reach_size":           record.ReachSize,
		"reach_display":        formatNumber(locale, record.ReachSize),
		"interests":            record.Interests,
		"demographics":         record.Demographics,
		"badge_variant":        audience.BadgeVariant(record.MatchRate),
		"match_color":          audience.ScoreColor(record.MatchRate),
		"conversion_color":     audience.ScoreColor(record.ConversionPotential),
		"efficiency_color":     audience.ScoreColor(record.CostEfficiency),
	}
}

var defaultInsightSections = []string{"recommendations", "audience_insights", "messaging"}

func aiInsightsProvider(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	locale := meta.Viewer.Locale
	sections := stringSliceValue(meta.Instance.Configuration["sections"])
	if len(sections) == 0 {
		sections = defaultInsightSections
	}
	notes := audience.DefaultInsightNotes()
	out := make([]map[string]any, 0, len(sections))
	for _, section := range sections {
		entry := map[string]any{"key": section}
		switch section {
		case "recommendations":
			entry["title"] = translateOrFallback(ctx, meta.Translator, "dashboard.insights.recommendations", locale, "Strategic Targeting Recommendations", nil)
			entry["items"] = notes.Recommendations
		case "audience_insights":
			entry["title"] = translateOrFallback(ctx, meta.Translator, "dashboard.insights.audience", locale, "Key Audience Characteristics", nil)
			entry["text"] = notes.AudienceInsights
		case "messaging":
			entry["title"] = translateOrFallback(ctx, meta.Translator, "dashboard.insights.messaging", locale, "Messaging Strategy", nil)
			entry["text"] = notes.Messaging
		default:
			continue
		}
		out = append(out, entry)
	}
	return WidgetData{
		"title":    translateOrFallback(ctx, meta.Translator, "dashboard.insights.title", locale, "AI Insights & Recommendations", nil),
		"has_data": meta.State.HasAudiences(),
		"sections": out,
	}, nil
}

const performancePlaceholder = "Performance projections will be available after running your campaign with the selected audiences."

func performanceProjectionProvider(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	locale := meta.Viewer.Locale
	msg := stringValue(meta.Instance.Configuration["message"], performancePlaceholder)
	data := WidgetData{
		"title":   translateOrFallback(ctx, meta.Translator, "dashboard.performance.title", locale, "Campaign Performance Projections", nil),
		"message": translateOrFallback(ctx, meta.Translator, "dashboard.performance.message", locale, msg, nil),
		"applied": meta.State.HasAppliedAudiences,
	}
	if meta.State.HasAppliedAudiences {
		names := make([]string, len(meta.State.Audiences))
		for i, record := range meta.State.Audiences {
			names[i] = record.Name
		}
		data["segments"] = names
	}
	return data, nil
}

// formatNumber groups digits the way the viewer's locale does. Unknown locales use English.
func formatNumber(locale string, n int) string {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return message.NewPrinter(tag).Sprintf("%d", n)
}

func formatPercent(n int) string {
	return fmt.Sprintf("%d%%", n)
}
