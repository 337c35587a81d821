package dashboard

import (
	"context"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

func applyOrderOverride(widgets []WidgetInstance, order []string) []WidgetInstance {
	if len(order) == 0 {
		return widgets
	}
	index := make(map[string]WidgetInstance, len(widgets))
	for _, w := range widgets {
		index[w.ID] = w
	}
	result := make([]WidgetInstance, 0, len(widgets))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if w, ok := index[id]; ok {
			if _, dup := seen[id]; dup {
				continue
			}
			result = append(result, w)
			seen[id] = struct{}{}
		}
	}
	for _, w := range widgets {
		if _, ok := seen[w.ID]; !ok {
			result = append(result, w)
		}
	}
	return result
}

func applyHiddenFilter(widgets []WidgetInstance, hidden map[string]bool) []WidgetInstance {
	if len(hidden) == 0 {
		return widgets
	}
	out := make([]WidgetInstance, 0, len(widgets))
	for _, w := range widgets {
		if hidden[w.ID] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// applyChartView keeps only the segment chart matching the viewer's toggle.
func applyChartView(widgets []WidgetInstance, view ChartView) []WidgetInstance {
	drop := WidgetSegmentBars
	if view == ChartViewBar {
		drop = WidgetSegmentRadar
	}
	out := make([]WidgetInstance, 0, len(widgets))
	for _, w := range widgets {
		if w.DefinitionID == drop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func buildTabViews(ctx context.Context, svc TranslationService, state audience.State, locale string) []TabView {
	tabs := make([]TabView, 0, len(audience.Tabs))
	for _, tab := range audience.Tabs {
		area, _ := AreaForTab(tab)
		tabs = append(tabs, TabView{
			Tab:      tab,
			Label:    TabLabel(ctx, svc, tab, locale),
			AreaCode: area,
			Active:   state.ActiveTab == tab,
			Enabled:  state.CanSelect(tab),
		})
	}
	return tabs
}
