package optimizer

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func pt(lng, lat float64) domain.Coordinate {
	return domain.Coordinate{Lng: lng, Lat: lat}
}

// 三个需求点，一个现有设施只覆盖需求点 0，候选 0 覆盖 {0,1}，候选 1 覆盖 {1,2}
func scenarioMatrix(t *testing.T) *coverage.Matrix {
	t.Helper()
	demand := []domain.DemandPoint{
		{Location: pt(0, 0), Weight: 10},
		{Location: pt(1, 0), Weight: 20},
		{Location: pt(2, 0), Weight: 5},
	}
	existing := []domain.Facility{{Location: pt(-0.1, 0)}}
	candidates := []domain.Facility{{Location: pt(0.5, 0)}, {Location: pt(1.5, 0)}}

	m, err := coverage.Build(demand, existing, candidates, 60)
	require.NoError(t, err)
	return m
}

func randomMatrix(t *testing.T, seed uint64, nDemand, nExisting, nCandidates int) *coverage.Matrix {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	around := func() domain.Coordinate {
		return pt(118.6+rng.Float64()*0.4, 31.9+rng.Float64()*0.3)
	}

	demand := make([]domain.DemandPoint, nDemand)
	for i := range demand {
		demand[i] = domain.DemandPoint{Location: around(), Weight: float64(rng.IntN(5000))}
	}
	existing := make([]domain.Facility, nExisting)
	for i := range existing {
		existing[i] = domain.Facility{Location: around()}
	}
	candidates := make([]domain.Facility, nCandidates)
	for i := range candidates {
		candidates[i] = domain.Facility{Location: around()}
	}

	m, err := coverage.Build(demand, existing, candidates, 3)
	require.NoError(t, err)
	return m
}

func testParameters() Parameters {
	return Parameters{
		PopulationSize: 30,
		SelectCount:    5,
		MutationRate:   0.1,
		MutationScale:  0.1,
		CrossoverRate:  0.8,
		MaxGenerations: 25,
		Seed:           42,
	}
}

func TestScenarioPrefersResidualCoverage(t *testing.T) {
	params := testParameters()
	params.PopulationSize = 20
	params.SelectCount = 1
	params.MaxGenerations = 20
	params.EliteCount = 1

	o, err := New(scenarioMatrix(t), params)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1}, res.Selected)
	assert.Equal(t, 35.0, res.CoveredWeight)
	assert.Equal(t, 10.0, res.ExistingWeight)
	assert.Equal(t, 25.0, res.NewWeight)
	assert.Equal(t, 35.0, res.TotalWeight)
	assert.Equal(t, StopCompleted, res.StopReason)
	assert.Len(t, res.Trace, 20)
	assert.False(t, res.Degenerate)
}

func TestZeroSelectCountIsRejected(t *testing.T) {
	params := testParameters()
	params.SelectCount = 0

	_, err := New(scenarioMatrix(t), params)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "selectCount", cfgErr.Field)
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	m := scenarioMatrix(t)

	cases := map[string]func(p *Parameters){
		"selectCount":    func(p *Parameters) { p.SelectCount = 3 },
		"populationSize": func(p *Parameters) { p.PopulationSize = 0 },
		"maxGenerations": func(p *Parameters) { p.MaxGenerations = -1 },
		"tournamentSize": func(p *Parameters) { p.PopulationSize = 2 },
		"mutationScale":  func(p *Parameters) { p.MutationScale = 0 },
		"mutationRate":   func(p *Parameters) { p.MutationRate = 1.5 },
		"crossoverRate":  func(p *Parameters) { p.CrossoverRate = -0.1 },
		"eliteCount":     func(p *Parameters) { p.EliteCount = p.PopulationSize },
		"parallelism":    func(p *Parameters) { p.Parallelism = -2 },
	}

	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			params := testParameters()
			params.SelectCount = 1
			mutate(&params)

			_, err := New(m, params)
			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, field, cfgErr.Field)
		})
	}
}

func TestNewRejectsEmptySets(t *testing.T) {
	demand := []domain.DemandPoint{{Location: pt(0, 0), Weight: 1}}

	noCandidates, err := coverage.Build(demand, nil, nil, 5)
	require.NoError(t, err)
	_, err = New(noCandidates, testParameters())
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "candidates", cfgErr.Field)

	noDemand, err := coverage.Build(nil, nil, []domain.Facility{{Location: pt(0, 0)}}, 5)
	require.NoError(t, err)
	params := testParameters()
	params.SelectCount = 1
	_, err = New(noDemand, params)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "demand", cfgErr.Field)
}

func TestSelectAllCandidates(t *testing.T) {
	params := testParameters()
	params.SelectCount = 2
	params.PopulationSize = 4

	o, err := New(scenarioMatrix(t), params)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Selected)
	assert.Equal(t, 35.0, res.CoveredWeight)
	for _, v := range res.Best {
		assert.GreaterOrEqual(t, v, SelectedLow)
	}
}

func TestRunIsDeterministicWithSeed(t *testing.T) {
	m := randomMatrix(t, 7, 120, 4, 40)

	run := func(parallelism int) *Result {
		params := testParameters()
		params.Parallelism = parallelism
		o, err := New(m, params)
		require.NoError(t, err)
		res, err := o.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first := run(1)
	second := run(1)
	parallel := run(4)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Selected, second.Selected)
	assert.Equal(t, first.Best, second.Best)
	assert.Equal(t, first.Trace, parallel.Trace)
	assert.Equal(t, first.Selected, parallel.Selected)

	assert.Len(t, first.Selected, 5)
	assert.True(t, slices.IsSorted(first.Selected))
}

func TestGenerationHookReceivesTrace(t *testing.T) {
	o, err := New(randomMatrix(t, 3, 60, 2, 20), testParameters())
	require.NoError(t, err)

	var gens []int
	var bests []float64
	o.OnGeneration(func(generation int, best float64) {
		gens = append(gens, generation)
		bests = append(bests, best)
	})

	res, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, gens, 25)
	assert.Equal(t, 0, gens[0])
	assert.Equal(t, 24, gens[24])
	assert.Equal(t, res.Trace, bests)
	assert.Equal(t, 25, res.Generations)
}

func TestElitismKeepsBestFitness(t *testing.T) {
	params := testParameters()
	params.EliteCount = 1
	params.MutationRate = 0.5
	params.MutationScale = 0.5

	o, err := New(randomMatrix(t, 11, 150, 3, 50), params)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.NoError(t, err)
	for i := 1; i < len(res.Trace); i++ {
		assert.GreaterOrEqual(t, res.Trace[i], res.Trace[i-1])
	}
	assert.GreaterOrEqual(t, res.CoveredWeight, res.Trace[len(res.Trace)-1])
}

func TestRunStopsWhenCancelled(t *testing.T) {
	o, err := New(randomMatrix(t, 5, 40, 1, 10), testParameters())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := o.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, StopCancelled, res.StopReason)
	assert.Equal(t, 0, res.Generations)
	assert.Len(t, res.Selected, 5)
}

func TestRunStopsAtTimeBudget(t *testing.T) {
	params := testParameters()
	params.TimeBudget = time.Nanosecond

	o, err := New(randomMatrix(t, 5, 40, 1, 10), params)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopTimeBudget, res.StopReason)
	assert.Less(t, res.Generations, params.MaxGenerations)
}

func TestZeroWeightsAreDegenerate(t *testing.T) {
	demand := []domain.DemandPoint{{Location: pt(0, 0)}, {Location: pt(0.1, 0)}}
	candidates := []domain.Facility{{Location: pt(0, 0)}, {Location: pt(0.1, 0)}, {Location: pt(5, 5)}}
	m, err := coverage.Build(demand, nil, candidates, 1)
	require.NoError(t, err)

	params := testParameters()
	params.SelectCount = 1
	o, err := New(m, params)
	require.NoError(t, err)

	res, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Degenerate)
	assert.Equal(t, 0.0, res.CoveredWeight)
	for _, v := range res.Trace {
		assert.Equal(t, 0.0, v)
	}
}

func TestBreedKeepsOddPopulationSize(t *testing.T) {
	params := testParameters()
	params.PopulationSize = 5
	params.CrossoverRate = 1

	o, err := New(randomMatrix(t, 9, 30, 1, 12), params)
	require.NoError(t, err)

	parents := make([]Individual, 5)
	for i := range parents {
		parents[i] = randomIndividual(o.rng, 12, 5)
	}

	offspring := o.breed(parents)
	require.Len(t, offspring, 5)
	for _, child := range offspring {
		assertRepaired(t, child, 5)
	}
}

func TestFitnessMatchesDecodedSelection(t *testing.T) {
	m := scenarioMatrix(t)
	pr, err := NewProblem(m, 1)
	require.NoError(t, err)

	assert.Equal(t, 30.0, pr.Fitness(Individual{0.9, 0.1}))
	assert.Equal(t, 35.0, pr.Fitness(Individual{0.1, 0.9}))
	assert.Equal(t, 10.0, pr.CoveredWeight(nil))
}

func TestCoveredWeightMonotoneInSelectCount(t *testing.T) {
	m := randomMatrix(t, 21, 200, 5, 30)
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := 0; trial < 20; trial++ {
		ind := make(Individual, m.CandidateCount())
		for i := range ind {
			ind[i] = rng.Float64()
		}

		prev := -1.0
		for p := 1; p <= m.CandidateCount(); p++ {
			pr, err := NewProblem(m, p)
			require.NoError(t, err)
			w := pr.Fitness(ind)
			assert.GreaterOrEqual(t, w, prev)
			prev = w
		}
	}
}
