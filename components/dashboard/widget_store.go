package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TextCodeWidgetNotFound marks lookups of unknown widget instances or areas.
const TextCodeWidgetNotFound = "WIDGET_NOT_FOUND"

// MemoryWidgetStore keeps tab layouts in process memory. Layouts are rebuilt from
// seeds or manifests on start.
type MemoryWidgetStore struct {
	mu           sync.Mutex
	now          func() time.Time
	areas        map[string]WidgetAreaDefinition
	definitions  map[string]WidgetDefinition
	instances    map[string]WidgetInstance
	visibility   map[string]WidgetVisibility
	assignments  map[string][]string
	nextInstance int
}

// NewMemoryWidgetStore builds an empty store.
func NewMemoryWidgetStore() *MemoryWidgetStore {
	return &MemoryWidgetStore{
		now:         time.Now,
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]WidgetInstance{},
		visibility:  map[string]WidgetVisibility{},
		assignments: map[string][]string{},
	}
}

func (s *MemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

func (s *MemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

func (s *MemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[input.DefinitionID]; !ok {
		return WidgetInstance{}, widgetNotFound("definition", input.DefinitionID)
	}
	s.nextInstance++
	id := fmt.Sprintf("widget-%d", s.nextInstance)
	instance := WidgetInstance{
		ID:            id,
		DefinitionID:  input.DefinitionID,
		Configuration: cloneConfig(input.Configuration),
		Metadata:      cloneConfig(input.Metadata),
	}
	s.instances[id] = instance
	s.visibility[id] = input.Visibility
	return instance, nil
}

func (s *MemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[instanceID]; !ok {
		return widgetNotFound("instance", instanceID)
	}
	delete(s.instances, instanceID)
	delete(s.visibility, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = filterIDs(ids, instanceID)
	}
	return nil
}

func (s *MemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[input.AreaCode]; !ok {
		return widgetNotFound("area", input.AreaCode)
	}
	instance, ok := s.instances[input.InstanceID]
	if !ok {
		return widgetNotFound("instance", input.InstanceID)
	}
	if instance.AreaCode != "" {
		s.assignments[instance.AreaCode] = filterIDs(s.assignments[instance.AreaCode], input.InstanceID)
	}
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		order = slices.Insert(order, *input.Position, input.InstanceID)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	instance.AreaCode = input.AreaCode
	s.instances[input.InstanceID] = instance
	return nil
}

// ReorderArea applies the given order. Unknown ids are ignored and widgets missing
// from the list keep their relative order at the end.
func (s *MemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[input.AreaCode]; !ok {
		return widgetNotFound("area", input.AreaCode)
	}
	current := s.assignments[input.AreaCode]
	ordered := make([]string, 0, len(current))
	seen := make(map[string]struct{}, len(current))
	for _, id := range input.WidgetIDs {
		if _, dup := seen[id]; dup || !slices.Contains(current, id) {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			ordered = append(ordered, id)
		}
	}
	s.assignments[input.AreaCode] = ordered
	return nil
}

func (s *MemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.assignments[input.AreaCode]
	now := s.now()
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		inst, ok := s.instances[id]
		if !ok || !s.visibility[id].allows(input.Roles, now) {
			continue
		}
		inst.Configuration = cloneConfig(inst.Configuration)
		inst.Metadata = cloneConfig(inst.Metadata)
		widgets = append(widgets, inst)
	}
	return ResolvedArea{
		AreaCode: input.AreaCode,
		Widgets:  widgets,
	}, nil
}

func (v WidgetVisibility) allows(roles []string, now time.Time) bool {
	if v.StartAt != nil && now.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && !now.Before(*v.EndAt) {
		return false
	}
	if len(v.Roles) == 0 {
		return true
	}
	for _, role := range roles {
		if slices.Contains(v.Roles, role) {
			return true
		}
	}
	return false
}

func filterIDs(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func widgetNotFound(kind, id string) error {
	return goerrors.New(fmt.Sprintf("dashboard: widget %s %q not found", kind, id), goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeWidgetNotFound).
		WithMetadata(map[string]any{"kind": kind, "id": id})
}
