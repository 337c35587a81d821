package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

const (
	defaultChartHeight         = "360px"
	radarAreaOpacity   float32 = 0.3
	emptyInsightsCopy          = "No audience insights yet. Complete the targeting setup first."
)

type chartRenderContext struct {
	Viewer ViewerContext
	Theme  string
	Title  string
	// Subtitle is only drawn inside the chart when the title is.
	Subtitle string
}

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// EChartsProvider renders server-side chart HTML for the session's audience batch.
// Supported chart types are radar, bar and gauge.
type EChartsProvider struct {
	chartType     string
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// NewEChartsProvider builds a provider for a specific chart type. Charts are
// rendered on every fetch unless WithChartCache is given.
func NewEChartsProvider(chartType string, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		chartType: strings.ToLower(chartType),
		theme:     types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChartType reports the go-echarts chart type rendered by the provider.
func (p *EChartsProvider) ChartType() string {
	return p.chartType
}

// Fetch converts the session's audiences into go-echarts markup.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	if cfg == nil {
		cfg = map[string]any{}
	}

	title := stringValue(cfg["title"], "Audience Segment Comparison")
	subtitle := stringValue(cfg["subtitle"], "")
	if meta.Translator != nil {
		key := fmt.Sprintf("dashboard.widget.%s.title", meta.Instance.DefinitionID)
		title = translateOrFallback(ctx, meta.Translator, key, meta.Viewer.Locale, title, nil)
	}

	data := WidgetData{
		"chart_type": p.chartType,
		"title":      title,
		"subtitle":   subtitle,
		"chart_view": string(meta.Preferences.ChartView),
	}

	records := meta.State.Audiences
	if len(records) == 0 {
		data["has_data"] = false
		data["empty_message"] = translateOrFallback(ctx, meta.Translator, "dashboard.insights.empty", meta.Viewer.Locale, emptyInsightsCopy, nil)
		return data, nil
	}

	renderCtx := chartRenderContext{
		Viewer: meta.Viewer,
		Theme:  p.resolveTheme(meta.Viewer),
	}
	if override := strings.TrimSpace(stringValue(cfg["theme"], "")); override != "" {
		renderCtx.Theme = override
	}
	if boolValue(cfg["show_chart_title"]) {
		renderCtx.Title = title
		renderCtx.Subtitle = subtitle
	}

	labels := p.metricLabels(ctx, meta)
	renderFn := func() (string, error) {
		return p.render(records, labels, renderCtx)
	}

	var (
		html string
		err  error
	)
	if p.cache != nil {
		key := chartCacheKey(meta.SessionID, meta.State.Batch, meta.Instance.ID, p.chartType, renderCtx.Theme, meta.Viewer.Locale, configHash(cfg))
		html, err = p.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}

	data["has_data"] = true
	data["chart_html"] = html
	data["theme"] = renderCtx.Theme
	switch p.chartType {
	case types.ChartRadar:
		data["rows"] = audience.RadarRows(records)
	case types.ChartBar:
		data["rows"] = audience.BarRows(records)
	case types.ChartGauge:
		data["value"] = audience.Summarize(records).AvgMatchRate
	}
	return data, nil
}

// chartCacheKey leads with the session id so closing a session can purge its charts.
func chartCacheKey(sessionID string, batch int, instanceID, chartType, theme, locale, cfgHash string) string {
	return fmt.Sprintf("%s:%d:%s:%s:%s:%s:%s", sessionID, batch, instanceID, chartType, theme, locale, cfgHash)
}

func (p *EChartsProvider) render(records []audience.Record, labels map[audience.Metric]string, ctx chartRenderContext) (string, error) {
	switch p.chartType {
	case types.ChartRadar:
		return p.renderRadarChart(records, labels, ctx)
	case types.ChartBar:
		return p.renderBarChart(records, labels, ctx)
	case types.ChartGauge:
		return p.renderGaugeChart(records, labels, ctx)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", p.chartType)
	}
}

// renderRadarChart places one axis per audience and one polygon per metric.
func (p *EChartsProvider) renderRadarChart(records []audience.Record, labels map[audience.Metric]string, ctx chartRenderContext) (string, error) {
	rows := audience.RadarRows(records)
	indicators := make([]*opts.Indicator, len(rows))
	for i, row := range rows {
		indicators[i] = &opts.Indicator{Name: row.Name, Max: audience.ChartScaleMax}
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(append(p.globalChartOptions(ctx),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			Shape:       "polygon",
			SplitNumber: 5,
		}),
	)...)
	for i, metric := range audience.Metrics {
		values := make([]int, len(rows))
		for j, row := range rows {
			values[j] = row.Value(metric)
		}
		color := audience.SeriesColor(i)
		radar.AddSeries(labels[metric], []opts.RadarData{{Name: labels[metric], Value: values}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: color, Opacity: radarAreaOpacity}),
		)
	}
	return renderChart(radar)
}

// renderBarChart groups bars by metric with one series per distinct audience name.
func (p *EChartsProvider) renderBarChart(records []audience.Record, labels map[audience.Metric]string, ctx chartRenderContext) (string, error) {
	pivot := audience.BarRows(records)
	xAxis := make([]string, len(pivot.Rows))
	for i, row := range pivot.Rows {
		xAxis[i] = labels[row.Metric]
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(p.globalChartOptions(ctx),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: audience.ChartScaleMax}),
	)...)
	bar.SetXAxis(xAxis)
	for _, column := range pivot.Columns {
		points := make([]opts.BarData, len(pivot.Rows))
		for i, row := range pivot.Rows {
			value, _ := pivot.Value(row.Metric, column)
			points[i] = opts.BarData{Name: xAxis[i], Value: value}
		}
		bar.AddSeries(column, points,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: pivot.ColumnColor(column)}),
		)
	}
	return renderChart(bar)
}

func (p *EChartsProvider) renderGaugeChart(records []audience.Record, labels map[audience.Metric]string, ctx chartRenderContext) (string, error) {
	summary := audience.Summarize(records)
	name := labels[audience.MetricMatchRate]
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(p.globalChartOptions(ctx)...)
	gauge.AddSeries(name, []opts.GaugeData{
		{Name: name, Value: summary.AvgMatchRate},
	}, charts.WithItemStyleOpts(opts.ItemStyle{Color: audience.SeriesColor(0)}))
	return renderChart(gauge)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(ctx chartRenderContext) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  ctx.Theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: ctx.Title, Subtitle: ctx.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithColorsOpts(opts.Colors(audience.ChartPalette)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (p *EChartsProvider) resolveTheme(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

// metricLabels translates the metric series names, keyed by the English label.
func (p *EChartsProvider) metricLabels(ctx context.Context, meta WidgetContext) map[audience.Metric]string {
	labels := make(map[audience.Metric]string, len(audience.Metrics))
	for _, metric := range audience.Metrics {
		labels[metric] = translateOrFallback(ctx, meta.Translator, string(metric), meta.Viewer.Locale, string(metric), nil)
	}
	return labels
}

func stringSliceValue(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func boolValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return false
	}
}

// boolValueOr is boolValue with a default for absent keys.
func boolValueOr(v any, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return boolValue(v)
}
