package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-audience-dashboard/components/dashboard"
)

const defaultProviderPackage = "github.com/goliatone/go-audience-dashboard/components/dashboard"

type scaffoldCmd struct {
	Code            string   `required:"" help:"Fully-qualified widget code (e.g. audience.widget.reach_trend)."`
	Name            string   `required:"" help:"Display name for the widget."`
	Description     string   `required:"" help:"One-line description used in manifests."`
	Category        string   `default:"custom" help:"Widget category (audience, insights, charts, ...)."`
	ManifestPath    string   `required:"" type:"path" help:"Path to the widget manifest YAML/JSON file to update."`
	SchemaPath      string   `type:"path" help:"Optional path to a JSON schema file for the widget configuration."`
	Area            []string `help:"Tab areas to place the widget in (audience.tab.targeting, audience.tab.insights, audience.tab.performance)."`
	Tag             []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer      []string `help:"Maintainers to record in the manifest."`
	Capabilities    []string `help:"Provider capability labels (html,json,ws,...)."`
	DocsURL         string   `help:"Link to provider documentation."`
	Channel         string   `help:"Distribution channel label (community, partner, internal)."`
	ProviderPackage string   `default:"github.com/goliatone/go-audience-dashboard/components/dashboard" help:"Go package where the provider factory lives."`
	ProviderEntry   string   `help:"Factory identifier recorded in the manifest (defaults to New<Widget>Provider)."`
	ProviderOut     string   `help:"File path for the generated provider stub (defaults to components/dashboard/providers/<code>_provider.go)."`
	Overwrite       bool     `help:"Overwrite existing provider stub / manifest entry if present."`
	SkipProvider    bool     `name:"skip-provider" help:"Skip provider stub generation."`

	out io.Writer
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("audiencectl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite && findWidget(doc, cmd.Code) >= 0 {
		return fmt.Errorf("audiencectl: manifest already defines widget %s (use --overwrite to replace)", cmd.Code)
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	providerType := deriveBaseName(cmd.Code) + "Provider"
	providerEntry := cmd.ProviderEntry
	if providerEntry == "" {
		providerEntry = fmt.Sprintf("%s.New%s", cmd.ProviderPackage, providerType)
	}
	entry := dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider: dashboard.ManifestProvider{
			Name:         fmt.Sprintf("%s Provider", cmd.Name),
			Summary:      cmd.Description,
			Entry:        providerEntry,
			Package:      cmd.ProviderPackage,
			DocsURL:      cmd.DocsURL,
			Capabilities: cmd.Capabilities,
			Channel:      cmd.Channel,
		},
		Placements:  placements(cmd.Area),
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}

	if idx := findWidget(doc, cmd.Code); idx >= 0 {
		doc.Widgets[idx] = entry
	} else {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipProvider {
		fmt.Fprintf(cmd.writer(), "✓ Added %s to %s (provider entry recorded as %s)\n", cmd.Code, manifestPath, providerEntry)
		return nil
	}
	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "dashboard", "providers", fmt.Sprintf("%s_provider.go", sanitizeFileName(cmd.Code)))
	}
	if err := writeProviderStub(providerPath, providerPackageName(cmd.ProviderPackage), providerType, cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(cmd.writer(), "✓ Added %s to %s and generated %s\n", cmd.Code, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) writer() io.Writer {
	if cmd.out != nil {
		return cmd.out
	}
	return os.Stdout
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("audiencectl: widget code %s must contain at least one '.' segment", cmd.Code)
	}
	for _, area := range cmd.Area {
		if strings.TrimSpace(area) == "" {
			return errors.New("audiencectl: --area must not be blank")
		}
	}
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("audiencectl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("audiencectl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func findWidget(doc *dashboard.WidgetManifestDocument, code string) int {
	for idx, widget := range doc.Widgets {
		if widget.Definition.Code == code {
			return idx
		}
	}
	return -1
}

func placements(areas []string) []dashboard.ManifestPlacement {
	if len(areas) == 0 {
		return nil
	}
	out := make([]dashboard.ManifestPlacement, 0, len(areas))
	for _, area := range areas {
		out = append(out, dashboard.ManifestPlacement{Area: strings.TrimSpace(area)})
	}
	return out
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("audiencectl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("audiencectl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("audiencectl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("audiencectl: write manifest: %w", err)
	}
	return nil
}

func writeProviderStub(path, pkg, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("audiencectl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("audiencectl: mkdir provider dir: %w", err)
	}
	qualifier := ""
	imports := "\t\"context\"\n"
	if pkg != "dashboard" {
		qualifier = "dashboard."
		imports += "\n\t\"" + defaultProviderPackage + "\"\n"
	}
	content := fmt.Sprintf(`package %[1]s

import (
%[2]s)

// %[3]s fetches data for %[4]s widgets.
type %[3]s struct{}

// New%[3]s wires the provider into the dashboard registry.
func New%[3]s() %[5]sProvider {
	return &%[3]s{}
}

// Fetch returns the widget payload for the session in meta.
func (p *%[3]s) Fetch(ctx context.Context, meta %[5]sWidgetContext) (%[5]sWidgetData, error) {
	return %[5]sWidgetData{
		"session_id": meta.SessionID,
		"tab":        meta.State.ActiveTab,
	}, nil
}
`, pkg, imports, providerType, code, qualifier)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("audiencectl: write provider stub: %w", err)
	}
	return nil
}

func deriveBaseName(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		slug = code
	}
	return strcase.ToPascal(slug)
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}

// providerPackageName returns the last path element of an import path, used as
// the package clause of the generated stub.
func providerPackageName(importPath string) string {
	importPath = strings.TrimSuffix(strings.TrimSpace(importPath), "/")
	if idx := strings.LastIndex(importPath, "/"); idx >= 0 {
		importPath = importPath[idx+1:]
	}
	if importPath == "" {
		return "dashboard"
	}
	return strcase.ToSnake(importPath)
}
