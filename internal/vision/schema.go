package vision

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildFieldsJSONSchema returns the JSON-Schema (draft 2020-12 subset) for a
// full-field vision response. Every property is optional; the service omits
// what it cannot read.
func BuildFieldsJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"doc_type":           map[string]any{"type": "string", "minLength": 1},
			"vendor":             map[string]any{"type": "string", "minLength": 1},
			"amount":             map[string]any{"type": "string", "pattern": `^-?\d+(\.\d{1,2})?$`},
			"currency":           map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"date":               map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"building_candidate": map[string]any{"type": "string", "minLength": 1},
		},
	}
}

// BuildVendorJSONSchema constrains the vendor-only re-query.
func BuildVendorJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"vendor": map[string]any{"type": "string", "minLength": 1},
		},
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
