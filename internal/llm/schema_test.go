package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatResponseSchema(t *testing.T) {
	schema, err := CompileSchema(FlatResponseSchema())
	require.NoError(t, err)

	valid := []string{
		`{}`,
		`{"provider":null,"line_items":null,"totals":null}`,
		`{"provider":{"name":"A","rut":null},"line_items":[{"rubro_raw":null,"quantity":1}],"totals":{"total":10},"extra":true}`,
	}
	for _, doc := range valid {
		assert.NoError(t, ValidateJSON(schema, []byte(doc)), doc)
	}

	invalid := []string{
		`[]`,
		`{"provider":"Acme"}`,
		`{"totals":{"total":"10"}}`,
		`{"line_items":[{"quantity":"many"}]}`,
	}
	for _, doc := range invalid {
		assert.Error(t, ValidateJSON(schema, []byte(doc)), doc)
	}
}

func TestValidateJSONBadData(t *testing.T) {
	schema, err := CompileSchema(map[string]any{"type": "object"})
	require.NoError(t, err)
	assert.Error(t, ValidateJSON(schema, []byte(`{`)))
}
