package audience

import (
	"context"
	"time"
)

// DefaultLatency is the simulated inference delay applied to the mock generator.
const DefaultLatency = 2 * time.Second

// Generator turns targeting input into a batch of audience records.
type Generator interface {
	Generate(ctx context.Context, input TargetingInput) ([]Record, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, input TargetingInput) ([]Record, error)

// Generate calls f(ctx, input).
func (f GeneratorFunc) Generate(ctx context.Context, input TargetingInput) ([]Record, error) {
	return f(ctx, input)
}

type segmentTemplate struct {
	name         string
	matchRate    int
	conversion   int
	reach        int
	efficiency   int
	tags         []string
	demographics Demographics
}

var mockSegments = []segmentTemplate{
	{
		name:         "Primary Target Segment",
		matchRate:    92,
		conversion:   87,
		reach:        250000,
		efficiency:   85,
		tags:         []string{"Technology", "Digital Marketing"},
		demographics: Demographics{AgeRange: "25-34", Gender: "Mixed", Location: "Urban Areas"},
	},
	{
		name:         "Secondary Target Segment",
		matchRate:    78,
		conversion:   72,
		reach:        420000,
		efficiency:   68,
		tags:         []string{"Business News", "Productivity"},
		demographics: Demographics{AgeRange: "35-44", Gender: "Mixed", Location: "Suburban Areas"},
	},
	{
		name:         "Expansion Opportunity",
		matchRate:    64,
		conversion:   58,
		reach:        850000,
		efficiency:   74,
		tags:         []string{"Professional Development"},
		demographics: Demographics{AgeRange: "45-54", Gender: "Mixed", Location: "Mixed Areas"},
	},
}

// MockGenerator fabricates the fixed three-segment batch. Ids are batch scoped (1..3),
// so identical input always yields identical output.
type MockGenerator struct{}

// Generate implements Generator. It never fails.
func (MockGenerator) Generate(_ context.Context, input TargetingInput) ([]Record, error) {
	return MockAudiences(input), nil
}

// MockAudiences is the pure form of MockGenerator.
func MockAudiences(input TargetingInput) []Record {
	interests := input.InterestList()
	records := make([]Record, len(mockSegments))
	for i, seg := range mockSegments {
		tags := make([]string, 0, len(interests)+len(seg.tags))
		tags = append(tags, interests...)
		tags = append(tags, seg.tags...)
		records[i] = Record{
			ID:                  i + 1,
			Name:                seg.name,
			MatchRate:           seg.matchRate,
			ConversionPotential: seg.conversion,
			ReachSize:           seg.reach,
			CostEfficiency:      seg.efficiency,
			Interests:           tags,
			Demographics:        seg.demographics,
		}.Normalize()
	}
	return records
}

// WithLatency delays every generation by d, honouring ctx cancellation.
func WithLatency(gen Generator, d time.Duration) Generator {
	if d <= 0 {
		return gen
	}
	return GeneratorFunc(func(ctx context.Context, input TargetingInput) ([]Record, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		return gen.Generate(ctx, input)
	})
}

// NormalizeBatch clamps every record and enforces batch-unique ids, renumbering
// duplicates after the highest id seen.
func NormalizeBatch(records []Record) []Record {
	out := make([]Record, len(records))
	seen := make(map[int]struct{}, len(records))
	next := 0
	for _, r := range records {
		if r.ID > next {
			next = r.ID
		}
	}
	for i, r := range records {
		r = r.Normalize().Clone()
		if _, dup := seen[r.ID]; dup || r.ID <= 0 {
			next++
			r.ID = next
		}
		seen[r.ID] = struct{}{}
		out[i] = r
	}
	return out
}
