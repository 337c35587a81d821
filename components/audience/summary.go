package audience

import "math"

// Summary holds the four insight tiles.
type Summary struct {
	SegmentCount           int `json:"segment_count"`
	TotalReach             int `json:"total_reach"`
	AvgMatchRate           int `json:"avg_match_rate"`
	AvgConversionPotential int `json:"avg_conversion_potential"`
}

// HasData reports whether the summary was computed from at least one record.
func (s Summary) HasData() bool {
	return s.SegmentCount > 0
}

// Summarize aggregates a batch. An empty batch yields the zero Summary.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	var reach, match, conversion int
	for _, r := range records {
		reach += r.ReachSize
		match += r.MatchRate
		conversion += r.ConversionPotential
	}
	n := len(records)
	return Summary{
		SegmentCount:           n,
		TotalReach:             reach,
		AvgMatchRate:           roundedMean(match, n),
		AvgConversionPotential: roundedMean(conversion, n),
	}
}

// roundedMean rounds half up, matching the dashboard's display rounding.
func roundedMean(sum, n int) int {
	return int(math.Floor(float64(sum)/float64(n) + 0.5))
}
