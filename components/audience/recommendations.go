package audience

// PrimaryMatchThreshold splits primary from secondary recommendations.
const PrimaryMatchThreshold = 80

// RecommendationFilter selects one of the recommendation views.
type RecommendationFilter string

const (
	FilterAll       RecommendationFilter = "all"
	FilterPrimary   RecommendationFilter = "primary"
	FilterSecondary RecommendationFilter = "secondary"
)

// ParseRecommendationFilter falls back to FilterAll for unknown values.
func ParseRecommendationFilter(value string) RecommendationFilter {
	switch RecommendationFilter(value) {
	case FilterPrimary:
		return FilterPrimary
	case FilterSecondary:
		return FilterSecondary
	default:
		return FilterAll
	}
}

// Recommendations are three views over the same batch, each in source order.
type Recommendations struct {
	All       []Record `json:"all"`
	Primary   []Record `json:"primary"`
	Secondary []Record `json:"secondary"`
}

// Recommend partitions records by PrimaryMatchThreshold.
func Recommend(records []Record) Recommendations {
	recs := Recommendations{
		All:       make([]Record, 0, len(records)),
		Primary:   []Record{},
		Secondary: []Record{},
	}
	for _, r := range records {
		recs.All = append(recs.All, r)
		if r.MatchRate > PrimaryMatchThreshold {
			recs.Primary = append(recs.Primary, r)
		} else {
			recs.Secondary = append(recs.Secondary, r)
		}
	}
	return recs
}

// View returns the list for filter.
func (r Recommendations) View(filter RecommendationFilter) []Record {
	switch filter {
	case FilterPrimary:
		return r.Primary
	case FilterSecondary:
		return r.Secondary
	default:
		return r.All
	}
}

// BadgeVariant picks the match badge style for a score.
func BadgeVariant(score int) string {
	switch {
	case score >= 80:
		return "default"
	case score >= 60:
		return "secondary"
	default:
		return "outline"
	}
}

// ScoreColor picks the progress bar colour class for a score.
func ScoreColor(score int) string {
	switch {
	case score >= 80:
		return "bg-green-500"
	case score >= 60:
		return "bg-amber-500"
	default:
		return "bg-gray-400"
	}
}
