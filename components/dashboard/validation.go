package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TextCodeInvalidWidgetConfig tags configuration rejected by a widget schema.
const TextCodeInvalidWidgetConfig = "INVALID_WIDGET_CONFIG"

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// JSONSchemaValidator compiles widget schemas once and validates configuration maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the widget schema.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload, err := normalizeConfig(def.Code, config)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("dashboard: configuration for %s failed validation", def.Code)).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeInvalidWidgetConfig).
			WithMetadata(map[string]any{"definition": def.Code})
	}
	return nil
}

// normalizeConfig round-trips through JSON so Go slices/ints match schema types.
func normalizeConfig(code string, config map[string]any) (map[string]any, error) {
	if config == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal config for %s: %w", code, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("dashboard: normalize config for %s: %w", code, err)
	}
	return payload, nil
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}
