package audience

// Record is a single fabricated targeting segment.
type Record struct {
	ID                  int          `json:"id" yaml:"id"`
	Name                string       `json:"name" yaml:"name"`
	MatchRate           int          `json:"match_rate" yaml:"match_rate"`
	ConversionPotential int          `json:"conversion_potential" yaml:"conversion_potential"`
	ReachSize           int          `json:"reach_size" yaml:"reach_size"`
	CostEfficiency      int          `json:"cost_efficiency" yaml:"cost_efficiency"`
	Interests           []string     `json:"interests" yaml:"interests"`
	Demographics        Demographics `json:"demographics" yaml:"demographics"`
}

// Demographics is descriptive only; nothing scores on it.
type Demographics struct {
	AgeRange string `json:"age_range" yaml:"age_range"`
	Gender   string `json:"gender" yaml:"gender"`
	Location string `json:"location" yaml:"location"`
}

// Normalize clamps percentage scores to [0,100] and reach to >= 0.
func (r Record) Normalize() Record {
	r.MatchRate = clampPercent(r.MatchRate)
	r.ConversionPotential = clampPercent(r.ConversionPotential)
	r.CostEfficiency = clampPercent(r.CostEfficiency)
	if r.ReachSize < 0 {
		r.ReachSize = 0
	}
	return r
}

// Clone returns a copy that does not share the interests slice.
func (r Record) Clone() Record {
	r.Interests = append([]string(nil), r.Interests...)
	return r
}

// CloneRecords deep-copies a batch.
func CloneRecords(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]Record, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	return out
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
