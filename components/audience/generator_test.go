package audience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAudiencesPrependsUserInterests(t *testing.T) {
	records := MockAudiences(TargetingInput{Interests: "Fitness, Tech"})
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Fitness", "Tech", "Technology", "Digital Marketing"}, records[0].Interests)
	assert.Equal(t, []string{"Fitness", "Tech", "Business News", "Productivity"}, records[1].Interests)
	assert.Equal(t, []string{"Fitness", "Tech", "Professional Development"}, records[2].Interests)

	assert.Equal(t, "Primary Target Segment", records[0].Name)
	assert.Equal(t, "Secondary Target Segment", records[1].Name)
	assert.Equal(t, "Expansion Opportunity", records[2].Name)
}

func TestMockAudiencesFixedScores(t *testing.T) {
	records := MockAudiences(TargetingInput{})
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		ID:                  1,
		Name:                "Primary Target Segment",
		MatchRate:           92,
		ConversionPotential: 87,
		ReachSize:           250000,
		CostEfficiency:      85,
		Interests:           []string{"Technology", "Digital Marketing"},
		Demographics:        Demographics{AgeRange: "25-34", Gender: "Mixed", Location: "Urban Areas"},
	}, records[0])
	assert.Equal(t, 78, records[1].MatchRate)
	assert.Equal(t, 420000, records[1].ReachSize)
	assert.Equal(t, 64, records[2].MatchRate)
	assert.Equal(t, 850000, records[2].ReachSize)
}

func TestMockAudiencesIgnoresNonInterestFields(t *testing.T) {
	a := MockAudiences(TargetingInput{Interests: "Yoga", Industry: "saas", Budget: "high"})
	b := MockAudiences(TargetingInput{Interests: "Yoga", Industry: "retail", CampaignObjective: "retention"})
	assert.Equal(t, a, b)
}

func TestMockGeneratorIsDeterministic(t *testing.T) {
	input := TargetingInput{Interests: "Fitness, Tech"}
	first, err := MockGenerator{}.Generate(context.Background(), input)
	require.NoError(t, err)
	second, err := MockGenerator{}.Generate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i, r := range first {
		assert.Equal(t, i+1, r.ID)
	}
}

func TestMockAudiencesDoesNotShareInterestSlices(t *testing.T) {
	records := MockAudiences(TargetingInput{Interests: "A"})
	records[0].Interests[0] = "mutated"
	assert.Equal(t, "A", records[1].Interests[0])
	assert.Equal(t, "Technology", MockAudiences(TargetingInput{})[0].Interests[0])
}

func TestWithLatencyDelaysGeneration(t *testing.T) {
	gen := WithLatency(MockGenerator{}, 20*time.Millisecond)
	start := time.Now()
	records, err := gen.Generate(context.Background(), TargetingInput{})
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWithLatencyHonoursCancellation(t *testing.T) {
	gen := WithLatency(MockGenerator{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gen.Generate(ctx, TargetingInput{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWithLatencyZeroReturnsGenerator(t *testing.T) {
	var gen Generator = MockGenerator{}
	assert.Equal(t, gen, WithLatency(gen, 0))
}

func TestNormalizeBatchClampsAndRenumbers(t *testing.T) {
	out := NormalizeBatch([]Record{
		{ID: 2, MatchRate: 140, ConversionPotential: -5, CostEfficiency: 50, ReachSize: -10},
		{ID: 2, MatchRate: 40},
		{ID: 0, MatchRate: 10},
	})
	require.Len(t, out, 3)

	assert.Equal(t, 100, out[0].MatchRate)
	assert.Equal(t, 0, out[0].ConversionPotential)
	assert.Equal(t, 0, out[0].ReachSize)
	assert.Equal(t, []int{2, 3, 4}, []int{out[0].ID, out[1].ID, out[2].ID})
}
