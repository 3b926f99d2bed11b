package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func TestSourcesLoad(t *testing.T) {
	cfg := &config.Config{}
	cfg.Dataset.Demand.Path = writeSheet(t, [][]any{
		{"POINT_X", "POINT_Y", "P041221"},
		{118.78, 32.04, 100},
		{118.80, 32.06, 50},
	})
	cfg.Dataset.Demand.Lng, cfg.Dataset.Demand.Lat, cfg.Dataset.Demand.Weight = "POINT_X", "POINT_Y", "P041221"

	cfg.Dataset.Existing.Path = writeSheet(t, [][]any{
		{"name", "lng", "lat"},
		{"鼓楼充电站", 118.77, 32.06},
	})
	cfg.Dataset.Existing.Lng, cfg.Dataset.Existing.Lat, cfg.Dataset.Existing.Name = "lng", "lat", "name"

	cfg.Dataset.Candidate.Path = writeSheet(t, [][]any{
		{"name", "x", "y"},
		{"新街口停车场", 118.78, 32.04},
		{"夫子庙停车场", 118.79, 32.02},
	})
	cfg.Dataset.Candidate.Lng, cfg.Dataset.Candidate.Lat, cfg.Dataset.Candidate.Name = "x", "y", "name"

	data, err := SourcesFromConfig(cfg).Load()
	require.NoError(t, err)
	assert.Len(t, data.Demand, 2)
	require.Len(t, data.Existing, 1)
	assert.Equal(t, "鼓楼充电站", data.Existing[0].Name)
	require.Len(t, data.Candidates, 2)
	assert.Equal(t, domain.Coordinate{Lng: 118.79, Lat: 32.02}, data.Candidates[1].Location)
}

func TestSourcesLoadMissingFile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Dataset.Demand.Path = "does-not-exist.xlsx"

	_, err := SourcesFromConfig(cfg).Load()
	assert.Error(t, err)
}
