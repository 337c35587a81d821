package dashboard

import (
	"testing"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

func TestJSONSchemaValidatorRejectsInvalidPayload(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{
		Code: "demo.widget.string_required",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "minLength": 1},
			},
		},
	}
	if err := validator.Validate(def, map[string]any{"name": "Dashboard"}); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	err := validator.Validate(def, map[string]any{})
	if err == nil {
		t.Fatalf("expected validation error for missing name")
	}
	if !audience.HasTextCode(err, TextCodeInvalidWidgetConfig) {
		t.Fatalf("expected %s text code, got %v", TextCodeInvalidWidgetConfig, err)
	}
}

func TestJSONSchemaValidatorCachesCompiledSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{
		Code:   "demo.widget.cache",
		Schema: map[string]any{"type": "object"},
	}
	if err := validator.Validate(def, nil); err != nil {
		t.Fatalf("unexpected error validating config: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to contain 1 entry, got %d", len(validator.compiled))
	}
	if err := validator.Validate(def, map[string]any{}); err != nil {
		t.Fatalf("unexpected error on cached validation: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to remain 1 entry, got %d", len(validator.compiled))
	}
}

func TestDefaultSeedsSatisfyWidgetSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	defs := map[string]WidgetDefinition{}
	for _, def := range DefaultWidgetDefinitions() {
		defs[def.Code] = def
	}
	for _, seed := range DefaultSeedWidgets() {
		def, ok := defs[seed.DefinitionID]
		if !ok {
			t.Fatalf("seed references unknown definition %s", seed.DefinitionID)
		}
		if err := validator.Validate(def, seed.Configuration); err != nil {
			t.Fatalf("seed %s rejected: %v", seed.DefinitionID, err)
		}
	}
}

func TestRecommendationsSchemaRejectsUnknownFilter(t *testing.T) {
	validator := NewJSONSchemaValidator()
	for _, def := range DefaultWidgetDefinitions() {
		if def.Code != WidgetRecommendations {
			continue
		}
		if err := validator.Validate(def, map[string]any{"filter": "tertiary"}); err == nil {
			t.Fatalf("expected unknown filter to be rejected")
		}
		return
	}
	t.Fatalf("recommendations definition missing")
}
