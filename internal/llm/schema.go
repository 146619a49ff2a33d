package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles a JSON-Schema given as a generic map.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSON validates data against a compiled schema.
func ValidateJSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func nullable(typ string) map[string]any {
	return map[string]any{"type": []any{typ, "null"}}
}

// FlatResponseSchema describes what the chat provider may return: every field is
// optional and nullable, extra keys are tolerated.
func FlatResponseSchema() map[string]any {
	party := map[string]any{
		"type": []any{"object", "null"},
		"properties": map[string]any{
			"name":    nullable("string"),
			"rut":     nullable("string"),
			"address": nullable("string"),
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"provider": party,
			"line_items": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"rubro_raw":  nullable("string"),
						"quantity":   nullable("number"),
						"unit_price": nullable("number"),
						"subtotal":   nullable("number"),
					},
				},
			},
			"totals": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"subtotal": nullable("number"),
					"iva_rate": nullable("number"),
					"iva":      nullable("number"),
					"total":    nullable("number"),
				},
			},
		},
	}
}
