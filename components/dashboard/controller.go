package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
)

const (
	defaultDashboardTemplate = "dashboard.html"
	// DefaultBasePath prefixes dashboard routes and the links rendered into pages.
	DefaultBasePath = "/dashboard"
)

// LayoutResolver resolves the active tab layout of a session.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext, sessionID string) (Layout, error)
}

// ControllerOptions wires a Controller.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
	BasePath string
}

// Controller renders dashboard pages for transports.
type Controller struct {
	service  LayoutResolver
	renderer Renderer
	template string
	basePath string
}

// NewController wires the layout resolver and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultDashboardTemplate
	}
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		basePath: strings.TrimSuffix(opts.BasePath, "/"),
	}
}

// Layout resolves the session layout for a viewer.
func (c *Controller) Layout(ctx context.Context, viewer ViewerContext, sessionID string) (Layout, error) {
	if c.service == nil {
		return Layout{}, errors.New("dashboard: controller has no layout resolver")
	}
	return c.service.ConfigureLayout(ctx, viewer, sessionID)
}

// RenderTemplate resolves the layout and renders the dashboard template into out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, sessionID string, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: controller has no renderer")
	}
	layout, err := c.Layout(ctx, viewer, sessionID)
	if err != nil {
		return err
	}
	payload := LayoutPayload(layout)
	payload["base_path"] = c.basePath
	payload["viewer"] = map[string]any{
		"user_id": viewer.UserID,
		"locale":  viewer.Locale,
	}
	_, err = c.renderer.Render(c.template, payload, out)
	return err
}

// BasePath returns the route prefix links are rendered with.
func (c *Controller) BasePath() string {
	return c.basePath
}

// LayoutPayload flattens a layout into the map consumed by templates and JSON clients.
func LayoutPayload(layout Layout) map[string]any {
	widgets := make([]map[string]any, 0, len(layout.Widgets))
	for _, w := range layout.Widgets {
		widgets = append(widgets, map[string]any{
			"id":         w.ID,
			"definition": w.DefinitionID,
			"area":       w.AreaCode,
			"template":   WidgetTemplate(w.DefinitionID),
			"config":     w.Configuration,
			"data":       w.Data(),
		})
	}
	return map[string]any{
		"session":     layout.Session,
		"state":       layout.Session.State,
		"tabs":        layout.Session.Tabs,
		"can_apply":   layout.Session.CanApply,
		"area":        layout.AreaCode,
		"widgets":     widgets,
		"preferences": layout.Preferences,
	}
}

// WidgetTemplate maps a widget definition to its partial under templates/widgets.
func WidgetTemplate(definitionID string) string {
	name, ok := strings.CutPrefix(definitionID, "audience.widget.")
	if !ok || name == "" {
		return "widgets/generic.html"
	}
	return "widgets/" + name + ".html"
}
