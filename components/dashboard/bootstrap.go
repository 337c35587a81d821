package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAreas ensures the tab widget areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return fmt.Errorf("register area %s: %w", area.Code, err)
		}
	}
	return nil
}

// RegisterDefinitions registers the audience widget definitions.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	return registerDefinitions(ctx, store, registry, DefaultWidgetDefinitions())
}

func registerDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry, defs []WidgetDefinition) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, def := range defs {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return fmt.Errorf("register definition %s: %w", def.Code, err)
		}
		if registry != nil {
			if err := registry.RegisterDefinition(def); err != nil {
				return fmt.Errorf("register definition in registry %s: %w", def.Code, err)
			}
		}
	}
	return nil
}

// SeedLayout creates the starter widget assignments of every tab.
func SeedLayout(ctx context.Context, service *Service) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	return seed(ctx, service, DefaultSeedWidgets())
}

// SeedManifest registers a manifest's definitions and places its widgets.
func SeedManifest(ctx context.Context, service *Service, doc *WidgetManifestDocument) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed manifest")
	}
	if doc == nil {
		return errors.New("dashboard: manifest document is nil")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	defs := make([]WidgetDefinition, 0, len(doc.Widgets))
	for _, widget := range doc.Widgets {
		defs = append(defs, widget.Definition)
	}
	if err := registerDefinitions(ctx, service.WidgetStore(), service.Registry(), defs); err != nil {
		return err
	}
	if reg, ok := service.Registry().(*Registry); ok {
		for _, widget := range doc.Widgets {
			reg.recordProviderMetadata(widget.Definition.Code, widget.Provider)
		}
	}
	return seed(ctx, service, doc.SeedRequests())
}

// Bootstrap registers areas and definitions, then seeds the default layout.
func Bootstrap(ctx context.Context, service *Service) error {
	if service == nil {
		return errors.New("dashboard: service is required to bootstrap")
	}
	if err := RegisterAreas(ctx, service.WidgetStore()); err != nil {
		return err
	}
	if err := RegisterDefinitions(ctx, service.WidgetStore(), service.Registry()); err != nil {
		return err
	}
	return SeedLayout(ctx, service)
}

func seed(ctx context.Context, service *Service, reqs []AddWidgetRequest) error {
	var seedErr error
	for _, req := range reqs {
		if _, err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	return seedErr
}
