package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// InMemoryPreferenceStore provides a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]Preferences
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]Preferences),
	}
}

// DefaultPreferences is what an anonymous or new viewer sees.
func DefaultPreferences(locale string) Preferences {
	return Preferences{
		Locale:               locale,
		ChartView:            ChartViewRadar,
		RecommendationFilter: audience.FilterAll,
		AreaOrder:            map[string][]string{},
		HiddenWidgets:        map[string]bool{},
	}
}

// Preferences returns stored preferences or defaults.
func (s *InMemoryPreferenceStore) Preferences(_ context.Context, viewer ViewerContext) (Preferences, error) {
	if viewer.UserID == "" {
		return DefaultPreferences(viewer.Locale), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.data[viewer.UserID]
	if !ok {
		return DefaultPreferences(viewer.Locale), nil
	}
	prefs = clonePreferences(prefs)
	if prefs.Locale == "" {
		prefs.Locale = viewer.Locale
	}
	return prefs, nil
}

// SavePreferences persists preferences for a viewer.
func (s *InMemoryPreferenceStore) SavePreferences(_ context.Context, viewer ViewerContext, prefs Preferences) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	if prefs.Locale == "" {
		prefs.Locale = viewer.Locale
	}
	normalizePreferences(&prefs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = clonePreferences(prefs)
	return nil
}

func normalizePreferences(prefs *Preferences) {
	prefs.ChartView = ParseChartView(string(prefs.ChartView))
	prefs.RecommendationFilter = audience.ParseRecommendationFilter(string(prefs.RecommendationFilter))
	if prefs.AreaOrder == nil {
		prefs.AreaOrder = map[string][]string{}
	}
	if prefs.HiddenWidgets == nil {
		prefs.HiddenWidgets = map[string]bool{}
	}
}

func clonePreferences(prefs Preferences) Preferences {
	out := prefs
	out.AreaOrder = make(map[string][]string, len(prefs.AreaOrder))
	for area, ids := range prefs.AreaOrder {
		out.AreaOrder[area] = append([]string(nil), ids...)
	}
	out.HiddenWidgets = make(map[string]bool, len(prefs.HiddenWidgets))
	for id, hidden := range prefs.HiddenWidgets {
		out.HiddenWidgets[id] = hidden
	}
	return out
}
