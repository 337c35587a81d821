package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-audience-dashboard/components/dashboard"
)

func TestScaffoldWritesManifestAndProvider(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "widgets.yaml")
	stub := filepath.Join(dir, "providers", "reach_trend_provider.go")
	var out bytes.Buffer

	cmd := &scaffoldCmd{
		Code:            "audience.widget.reach_trend",
		Name:            "Reach Trend",
		Description:     "Reach of applied audiences over time",
		Category:        "insights",
		ManifestPath:    manifest,
		Area:            []string{dashboard.AreaPerformance},
		Tag:             []string{"reach"},
		ProviderPackage: defaultProviderPackage,
		ProviderOut:     stub,
		out:             &out,
	}
	require.NoError(t, cmd.Run(context.Background()))

	doc, err := dashboard.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	widget := doc.Widgets[0]
	assert.Equal(t, "audience.widget.reach_trend", widget.Definition.Code)
	assert.Equal(t, defaultProviderPackage+".NewReachTrendProvider", widget.Provider.Entry)
	require.Len(t, widget.Placements, 1)
	assert.Equal(t, dashboard.AreaPerformance, widget.Placements[0].Area)

	source, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(source), "package dashboard\n"))
	assert.Contains(t, string(source), "func NewReachTrendProvider() Provider")
	assert.Contains(t, string(source), "meta.SessionID")
	assert.Contains(t, out.String(), "audience.widget.reach_trend")
}

func TestScaffoldRejectsDuplicatesWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	base := scaffoldCmd{
		Code:            "audience.widget.notes",
		Name:            "Notes",
		Description:     "Analyst notes",
		ManifestPath:    filepath.Join(dir, "widgets.yaml"),
		ProviderPackage: defaultProviderPackage,
		SkipProvider:    true,
		out:             &bytes.Buffer{},
	}
	first := base
	require.NoError(t, first.Run(context.Background()))

	second := base
	err := second.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defines widget")

	replace := base
	replace.Overwrite = true
	replace.Name = "Analyst Notes"
	require.NoError(t, replace.Run(context.Background()))

	doc, err := dashboard.ReadManifest(base.ManifestPath)
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	assert.Equal(t, "Analyst Notes", doc.Widgets[0].Definition.Name)
}

func TestScaffoldStubQualifiesForeignPackages(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ext.go")
	cmd := &scaffoldCmd{
		Code:            "acme.widget.spend",
		Name:            "Spend",
		Description:     "Spend per audience",
		ManifestPath:    filepath.Join(dir, "widgets.yaml"),
		ProviderPackage: "github.com/acme/widgets",
		ProviderOut:     stub,
		out:             &bytes.Buffer{},
	}
	require.NoError(t, cmd.Run(context.Background()))

	source, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(source), "package widgets\n"))
	assert.Contains(t, string(source), "dashboard.Provider")
	assert.Contains(t, string(source), defaultProviderPackage)
}

func TestScaffoldValidatesCode(t *testing.T) {
	cmd := &scaffoldCmd{Code: "nodots", ManifestPath: filepath.Join(t.TempDir(), "m.yaml")}
	require.Error(t, cmd.Run(context.Background()))
}

func TestDeriveBaseName(t *testing.T) {
	assert.Equal(t, "ReachTrend", deriveBaseName("audience.widget.reach_trend"))
	assert.Equal(t, "SegmentMix", deriveBaseName("audience.segment_mix"))
	assert.Equal(t, "audience_widget_x", sanitizeFileName("audience.widget-x"))
	assert.Equal(t, "widgets", providerPackageName("github.com/acme/widgets/"))
}
