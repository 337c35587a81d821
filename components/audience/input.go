package audience

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Age slider bounds and defaults of the targeting form.
const (
	MinTargetAge       = 18
	MaxTargetAge       = 65
	defaultAgeRangeMin = 25
	defaultAgeRangeMax = 45
	defaultObjective   = "awareness"
	defaultBudgetLevel = "medium"
	interestsSeparator = ","
)

var (
	// Industries lists the selectable industry codes.
	Industries = []string{"ecommerce", "saas", "finance", "healthcare", "education", "retail", "other"}
	// CampaignObjectives lists the selectable objectives.
	CampaignObjectives = []string{"awareness", "consideration", "conversion", "retention"}
	// BudgetLevels lists the selectable budget levels (conservative, moderate, aggressive).
	BudgetLevels = []string{"low", "medium", "high"}
)

// AgeRange is the inclusive target age window.
type AgeRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// TargetingInput is the targeting form payload. Only Interests shapes the generated batch.
type TargetingInput struct {
	CampaignName       string   `json:"campaign_name" yaml:"campaign_name"`
	Industry           string   `json:"industry" yaml:"industry"`
	CampaignObjective  string   `json:"campaign_objective" yaml:"campaign_objective"`
	TargetLocation     string   `json:"target_location" yaml:"target_location"`
	AgeRange           AgeRange `json:"age_range" yaml:"age_range"`
	Budget             string   `json:"budget" yaml:"budget"`
	Interests          string   `json:"interests" yaml:"interests"`
	ProductDescription string   `json:"product_description" yaml:"product_description"`
}

// DefaultTargetingInput returns the form state shown before the user edits anything.
func DefaultTargetingInput() TargetingInput {
	return TargetingInput{
		CampaignObjective: defaultObjective,
		AgeRange:          AgeRange{Min: defaultAgeRangeMin, Max: defaultAgeRangeMax},
		Budget:            defaultBudgetLevel,
	}
}

// WithDefaults fills unset optional fields with the form defaults.
func (in TargetingInput) WithDefaults() TargetingInput {
	if strings.TrimSpace(in.CampaignObjective) == "" {
		in.CampaignObjective = defaultObjective
	}
	if strings.TrimSpace(in.Budget) == "" {
		in.Budget = defaultBudgetLevel
	}
	if in.AgeRange.Min == 0 && in.AgeRange.Max == 0 {
		in.AgeRange = AgeRange{Min: defaultAgeRangeMin, Max: defaultAgeRangeMax}
	}
	return in
}

// Validate checks the form constraints. The generator itself never rejects input.
func (in TargetingInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.CampaignName, validation.Required.Error("campaign name is required")),
		validation.Field(&in.Industry, validation.Required.Error("industry is required"), validation.In(toAny(Industries)...)),
		validation.Field(&in.CampaignObjective, validation.In(toAny(CampaignObjectives)...)),
		validation.Field(&in.Budget, validation.In(toAny(BudgetLevels)...)),
		validation.Field(&in.AgeRange, validation.By(validateAgeRange)),
	)
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "audience: invalid targeting input").
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeInvalidInput)
}

// InterestList splits the comma separated interests.
func (in TargetingInput) InterestList() []string {
	return ParseInterests(in.Interests)
}

// ParseInterests splits on commas, trims each tag and drops empty tags.
func ParseInterests(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, interestsSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func validateAgeRange(value any) error {
	r, ok := value.(AgeRange)
	if !ok {
		return errors.New("must be an age range")
	}
	if r.Min < MinTargetAge || r.Max > MaxTargetAge {
		return errors.New("must be between 18 and 65")
	}
	if r.Min > r.Max {
		return errors.New("minimum age must not exceed maximum age")
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
