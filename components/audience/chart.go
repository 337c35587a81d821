package audience

// Metric is one of the three plotted scores.
type Metric string

const (
	MetricMatchRate           Metric = "Match Rate"
	MetricConversionPotential Metric = "Conversion Potential"
	MetricCostEfficiency      Metric = "Cost Efficiency"
)

// Metrics lists the plotted metrics in display order.
var Metrics = []Metric{MetricMatchRate, MetricConversionPotential, MetricCostEfficiency}

// ChartPalette is cycled positionally over series.
var ChartPalette = []string{"#0575E6", "#64748b", "#94a3b8"}

// ChartScaleMax is the upper bound of every metric axis.
const ChartScaleMax = 100

// Value reads the metric from a record.
func (m Metric) Value(r Record) int {
	switch m {
	case MetricMatchRate:
		return r.MatchRate
	case MetricConversionPotential:
		return r.ConversionPotential
	case MetricCostEfficiency:
		return r.CostEfficiency
	default:
		return 0
	}
}

// SeriesColor returns the palette colour for the series at index.
func SeriesColor(index int) string {
	if index < 0 {
		index = -index
	}
	return ChartPalette[index%len(ChartPalette)]
}

// RadarRow is one audience across the three metric series.
type RadarRow struct {
	Name                string `json:"name"`
	MatchRate           int    `json:"match_rate"`
	ConversionPotential int    `json:"conversion_potential"`
	CostEfficiency      int    `json:"cost_efficiency"`
}

// Value reads a metric series from the row.
func (r RadarRow) Value(m Metric) int {
	switch m {
	case MetricMatchRate:
		return r.MatchRate
	case MetricConversionPotential:
		return r.ConversionPotential
	case MetricCostEfficiency:
		return r.CostEfficiency
	default:
		return 0
	}
}

// RadarRows maps records one-to-one into radar rows.
func RadarRows(records []Record) []RadarRow {
	rows := make([]RadarRow, len(records))
	for i, r := range records {
		rows[i] = RadarRow{
			Name:                r.Name,
			MatchRate:           r.MatchRate,
			ConversionPotential: r.ConversionPotential,
			CostEfficiency:      r.CostEfficiency,
		}
	}
	return rows
}

// BarRow is one metric with a value per audience column.
type BarRow struct {
	Metric Metric         `json:"name"`
	Values map[string]int `json:"values"`
}

// BarChart is the metric-major pivot of a batch.
type BarChart struct {
	// Columns holds distinct audience names in first-appearance order.
	Columns []string `json:"columns"`
	Rows    []BarRow `json:"rows"`
}

// Value returns the cell for metric/column and whether it exists.
func (c BarChart) Value(m Metric, column string) (int, bool) {
	for _, row := range c.Rows {
		if row.Metric != m {
			continue
		}
		v, ok := row.Values[column]
		return v, ok
	}
	return 0, false
}

// ColumnColor returns the palette colour assigned to a column.
func (c BarChart) ColumnColor(column string) string {
	for i, name := range c.Columns {
		if name == column {
			return SeriesColor(i)
		}
	}
	return ""
}

// BarRows pivots records into one row per metric. Records sharing a name collapse
// into one column; the later record wins.
func BarRows(records []Record) BarChart {
	columns := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		columns = append(columns, r.Name)
	}
	rows := make([]BarRow, len(Metrics))
	for i, metric := range Metrics {
		values := make(map[string]int, len(columns))
		for _, r := range records {
			values[r.Name] = metric.Value(r)
		}
		rows[i] = BarRow{Metric: metric, Values: values}
	}
	return BarChart{Columns: columns, Rows: rows}
}
