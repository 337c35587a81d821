package audience

// InsightNote is one labelled strategic recommendation.
type InsightNote struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// InsightNotes is the narrative block rendered under the charts.
type InsightNotes struct {
	Recommendations  []InsightNote `json:"recommendations"`
	AudienceInsights string        `json:"audience_insights"`
	Messaging        string        `json:"messaging"`
}

// DefaultInsightNotes returns the fixed guidance paired with the mock batch.
func DefaultInsightNotes() InsightNotes {
	return InsightNotes{
		Recommendations: []InsightNote{
			{Label: "Primary", Text: "Focus on the primary segment for highest conversion potential and efficient budget allocation."},
			{Label: "Secondary", Text: "Test the secondary audience segment with a smaller budget allocation to evaluate performance."},
			{Label: "Expansion", Text: "Consider the expansion segment for brand awareness campaigns with broader reach objectives."},
		},
		AudienceInsights: "Your ideal audience shows strong interest in technology and digital marketing, " +
			"with a focus on professional development. The 25-44 age bracket represents the highest " +
			"conversion potential with urban and suburban areas delivering the strongest engagement metrics.",
		Messaging: "Based on the audience analysis, your messaging should emphasize innovation, efficiency, " +
			"and professional growth. Highlight how your product or service helps users achieve their " +
			"business objectives and improve their workflow.",
	}
}

// Insights bundles every view derived from one batch.
type Insights struct {
	Summary         Summary         `json:"summary"`
	Recommendations Recommendations `json:"recommendations"`
	Radar           []RadarRow      `json:"radar"`
	Bars            BarChart        `json:"bars"`
	Notes           InsightNotes    `json:"notes"`
}

// Derive computes all insight views for records.
func Derive(records []Record) Insights {
	return Insights{
		Summary:         Summarize(records),
		Recommendations: Recommend(records),
		Radar:           RadarRows(records),
		Bars:            BarRows(records),
		Notes:           DefaultInsightNotes(),
	}
}
