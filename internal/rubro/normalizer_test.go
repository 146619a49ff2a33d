package rubro

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceNormalizeLines(t *testing.T) {
	n, err := LoadCSV(strings.NewReader(catalogCSV))
	require.NoError(t, err)
	svc := NewService(n, nil)

	raws := []string{"Transporte", "desconocido", "servicio de consultoría", ""}
	res := svc.NormalizeLines(raws)

	require.Len(t, res, len(raws))
	for i, r := range res {
		assert.Equal(t, i, r.LineIndex)
		assert.Equal(t, raws[i], r.OriginalRubro)
	}

	require.NotNil(t, res[0].NormalizedCode)
	assert.Equal(t, "R05", *res[0].NormalizedCode)
	assert.Nil(t, res[1].NormalizedCode)
	assert.Nil(t, res[1].NormalizedName)
	require.NotNil(t, res[2].NormalizedName)
	assert.Equal(t, "Servicio de consultoría", *res[2].NormalizedName)
	assert.Nil(t, res[3].NormalizedCode)
}

func TestServiceWithoutNomenclator(t *testing.T) {
	res := NewService(nil, nil).NormalizeLines([]string{"Transporte"})

	require.Len(t, res, 1)
	assert.Nil(t, res[0].NormalizedCode)
	assert.Nil(t, res[0].NormalizedName)
}

func TestServiceEmptyInput(t *testing.T) {
	assert.Empty(t, NewService(nil, nil).NormalizeLines(nil))
}
