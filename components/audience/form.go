package audience

import (
	"net/url"
	"strconv"
	"strings"
)

// Form field names of the targeting form.
const (
	FieldCampaignName       = "campaign_name"
	FieldIndustry           = "industry"
	FieldCampaignObjective  = "campaign_objective"
	FieldTargetLocation     = "target_location"
	FieldAgeMin             = "age_min"
	FieldAgeMax             = "age_max"
	FieldBudget             = "budget"
	FieldInterests          = "interests"
	FieldProductDescription = "product_description"
)

// TargetingInputFromForm reads a submitted targeting form. Unparseable ages are left
// at zero so WithDefaults or Validate can deal with them.
func TargetingInputFromForm(values url.Values) TargetingInput {
	in := TargetingInput{
		CampaignName:       strings.TrimSpace(values.Get(FieldCampaignName)),
		Industry:           strings.TrimSpace(values.Get(FieldIndustry)),
		CampaignObjective:  strings.TrimSpace(values.Get(FieldCampaignObjective)),
		TargetLocation:     strings.TrimSpace(values.Get(FieldTargetLocation)),
		Budget:             strings.TrimSpace(values.Get(FieldBudget)),
		Interests:          values.Get(FieldInterests),
		ProductDescription: values.Get(FieldProductDescription),
	}
	in.AgeRange.Min, _ = strconv.Atoi(strings.TrimSpace(values.Get(FieldAgeMin)))
	in.AgeRange.Max, _ = strconv.Atoi(strings.TrimSpace(values.Get(FieldAgeMax)))
	return in
}
