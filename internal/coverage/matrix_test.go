package coverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/geo"
)

func pt(lng, lat float64) domain.Coordinate {
	return domain.Coordinate{Lng: lng, Lat: lat}
}

// 赤道上每隔 1 度经度放一个需求点，两两相距约 111 公里
func equatorFixture() ([]domain.DemandPoint, []domain.Facility, []domain.Facility) {
	demand := []domain.DemandPoint{
		{Location: pt(0, 0), Weight: 10},
		{Location: pt(1, 0), Weight: 20},
		{Location: pt(2, 0), Weight: 5},
	}
	existing := []domain.Facility{{Location: pt(-0.1, 0)}}
	candidates := []domain.Facility{
		{Location: pt(0.5, 0)},
		{Location: pt(1.5, 0)},
	}
	return demand, existing, candidates
}

func TestBuildMasksExistingCoverage(t *testing.T) {
	demand, existing, candidates := equatorFixture()

	m, err := Build(demand, existing, candidates, 60)
	require.NoError(t, err)

	assert.Equal(t, [][]bool{{true, false, false}}, m.Existing)
	assert.Equal(t, []bool{true, false, false}, m.ExistingTotal)
	// 候选 0 原本覆盖 {0,1}，需求点 0 已被现有设施覆盖
	assert.Equal(t, []bool{false, true, false}, m.Candidate[0])
	assert.Equal(t, []bool{false, true, true}, m.Candidate[1])

	assert.Equal(t, 10.0, m.ExistingWeight())
	assert.Equal(t, 35.0, m.TotalWeight())
	assert.Equal(t, 20.0, m.Gain(0))
	assert.Equal(t, 25.0, m.Gain(1))
	assert.Equal(t, 3, m.DemandCount())
	assert.Equal(t, 2, m.CandidateCount())
}

func TestBuildNeverCountsAlreadyCoveredDemand(t *testing.T) {
	demand := []domain.DemandPoint{}
	for i := 0; i < 20; i++ {
		demand = append(demand, domain.DemandPoint{Location: pt(118.7+float64(i)*0.01, 32.0+float64(i%5)*0.01), Weight: float64(i)})
	}
	existing := []domain.Facility{{Location: pt(118.75, 32.02)}, {Location: pt(118.85, 32.01)}}
	candidates := []domain.Facility{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, domain.Facility{Location: pt(118.7+float64(i)*0.02, 32.01)})
	}

	m, err := Build(demand, existing, candidates, 3)
	require.NoError(t, err)

	for j, covered := range m.ExistingTotal {
		if !covered {
			continue
		}
		for i := range m.Candidate {
			assert.False(t, m.Candidate[i][j], "candidate %d counts demand %d already covered", i, j)
		}
	}
}

func TestBuildRadiusIsInclusive(t *testing.T) {
	demand := []domain.DemandPoint{{Location: pt(1, 0), Weight: 1}}
	candidates := []domain.Facility{{Location: pt(0, 0)}}
	radius := geo.Haversine(0, 0, 0, 1)

	m, err := Build(demand, nil, candidates, radius)
	require.NoError(t, err)
	assert.True(t, m.Candidate[0][0])
	assert.Empty(t, m.Existing)
}

func TestBuildRejectsNonPositiveRadius(t *testing.T) {
	demand, existing, candidates := equatorFixture()

	for _, r := range []float64{0, -1, math.NaN()} {
		_, err := Build(demand, existing, candidates, r)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "coverRadius", cfgErr.Field)
	}
}

func TestBuildRejectsMalformedInput(t *testing.T) {
	demand, existing, candidates := equatorFixture()

	badDemand := append([]domain.DemandPoint{}, demand...)
	badDemand[1].Location.Lat = math.NaN()
	_, err := Build(badDemand, existing, candidates, 60)
	var inputErr *domain.InputDataError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "demand", inputErr.Dataset)
	assert.Equal(t, 1, inputErr.Index)

	badWeight := append([]domain.DemandPoint{}, demand...)
	badWeight[2].Weight = -3
	_, err = Build(badWeight, existing, candidates, 60)
	require.ErrorAs(t, err, &inputErr)

	badCandidates := append([]domain.Facility{}, candidates...)
	badCandidates[0].Location.Lng = 200
	_, err = Build(demand, existing, badCandidates, 60)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "candidate", inputErr.Dataset)
}
