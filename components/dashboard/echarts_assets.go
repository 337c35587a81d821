package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsHost is where go-echarts publishes the ECharts runtime and themes.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a CDN or self-hosted bucket).
	envEChartsCDN = "GO_DASHBOARD_ECHARTS_CDN"
)

// ResolveEChartsAssetsHost returns the assets host, respecting GO_DASHBOARD_ECHARTS_CDN
// when set. An explicit override wins over both.
func ResolveEChartsAssetsHost(override string) string {
	if host := strings.TrimSpace(override); host != "" {
		return ensureTrailingSlash(host)
	}
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
