package audience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendSplitsOnThreshold(t *testing.T) {
	recs := Recommend(MockAudiences(TargetingInput{}))

	require.Len(t, recs.All, 3)
	require.Len(t, recs.Primary, 1)
	require.Len(t, recs.Secondary, 2)
	assert.Equal(t, "Primary Target Segment", recs.Primary[0].Name)
	assert.Equal(t, []string{"Secondary Target Segment", "Expansion Opportunity"}, names(recs.Secondary))
}

func TestRecommendThresholdIsExclusive(t *testing.T) {
	recs := Recommend([]Record{{ID: 1, MatchRate: 80}, {ID: 2, MatchRate: 81}})
	assert.Equal(t, []int{2}, ids(recs.Primary))
	assert.Equal(t, []int{1}, ids(recs.Secondary))
}

func TestRecommendPartitionReconstitutesAll(t *testing.T) {
	batch := []Record{
		{ID: 1, MatchRate: 10},
		{ID: 2, MatchRate: 95},
		{ID: 3, MatchRate: 80},
		{ID: 4, MatchRate: 81},
		{ID: 5, MatchRate: 100},
		{ID: 6, MatchRate: 0},
	}
	recs := Recommend(batch)

	seen := map[int]int{}
	for _, r := range recs.Primary {
		seen[r.ID]++
	}
	for _, r := range recs.Secondary {
		seen[r.ID]++
	}
	require.Len(t, seen, len(batch))
	for _, r := range recs.All {
		assert.Equal(t, 1, seen[r.ID], "record %d", r.ID)
	}
	assert.Equal(t, []int{2, 4, 5}, ids(recs.Primary))
	assert.Equal(t, []int{1, 3, 6}, ids(recs.Secondary))
	assert.Equal(t, batch, recs.All)
}

func TestRecommendEmptyViewsAreNonNil(t *testing.T) {
	recs := Recommend(nil)
	assert.NotNil(t, recs.All)
	assert.NotNil(t, recs.Primary)
	assert.NotNil(t, recs.Secondary)
}

func TestRecommendationsView(t *testing.T) {
	recs := Recommend(MockAudiences(TargetingInput{}))
	assert.Len(t, recs.View(ParseRecommendationFilter("primary")), 1)
	assert.Len(t, recs.View(ParseRecommendationFilter("secondary")), 2)
	assert.Len(t, recs.View(ParseRecommendationFilter("bogus")), 3)
}

func TestBadgeVariantAndScoreColor(t *testing.T) {
	cases := []struct {
		score   int
		variant string
		color   string
	}{
		{92, "default", "bg-green-500"},
		{80, "default", "bg-green-500"},
		{79, "secondary", "bg-amber-500"},
		{60, "secondary", "bg-amber-500"},
		{59, "outline", "bg-gray-400"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.variant, BadgeVariant(tc.score), "score %d", tc.score)
		assert.Equal(t, tc.color, ScoreColor(tc.score), "score %d", tc.score)
	}
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func ids(records []Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
