package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// Renderer executes a named page template. Controllers write into out when given
// and otherwise use the returned string.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// The page template includes the targeting form, recommendations, and chart
// widget partials from templates/widgets.
//
//go:embed templates/*.html templates/widgets/*.html
var pageTemplates embed.FS

// NewTemplateRenderer returns a go-template (pongo2) renderer over the embedded
// audience dashboard templates. Templates load from the binary, never from the
// working directory.
func NewTemplateRenderer() (Renderer, error) {
	root, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("dashboard: template fs: %w", err)
	}
	return template.NewRenderer(
		template.WithFS(root),
		template.WithExtension(".html"),
	)
}
