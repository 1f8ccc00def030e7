package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildMedicationsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map, describing the shape the extract_medications prompt asks for.
// It is deliberately loose beyond the top-level contract: the generation
// service is non-deterministic and extra keys must not fail a reply.
func BuildMedicationsJSONSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"medications"},
		"properties": map[string]any{
			"medications": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":      map[string]any{"type": "string"},
						"dosage":    map[string]any{"type": "string"},
						"frequency": map[string]any{"type": "string"},
					},
					"additionalProperties": true,
				},
			},
		},
		"additionalProperties": true,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
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
