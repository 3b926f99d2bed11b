package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func TestJSONBValue(t *testing.T) {
	ids := []int64{3, 1, 2}
	v, err := asJSONB(&ids).Value()
	require.NoError(t, err)
	assert.Equal(t, "[3,1,2]", v)

	var empty []string
	v, err = asJSONB(&empty).Value()
	require.NoError(t, err)
	assert.Equal(t, "null", v)
}

func TestJSONBScan(t *testing.T) {
	var params domain.OptimizationParameters
	require.NoError(t, asJSONB(&params).Scan([]byte(`{"populationSize":50,"selectCount":4,"coverRadius":2.5}`)))
	assert.Equal(t, 50, params.PopulationSize)
	assert.Equal(t, 4, params.SelectCount)
	assert.Equal(t, 2.5, params.CoverRadius)

	trace := []float64{1}
	require.NoError(t, asJSONB(&trace).Scan(nil))
	assert.Nil(t, trace)

	var factors []string
	require.NoError(t, asJSONB(&factors).Scan(`["交通","人口"]`))
	assert.Equal(t, []string{"交通", "人口"}, factors)

	assert.Error(t, asJSONB(&factors).Scan(42))
}
