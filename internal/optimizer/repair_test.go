package optimizer

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRepaired(t *testing.T, ind Individual, p int) {
	t.Helper()
	high, low := 0, 0
	for _, v := range ind {
		switch {
		case v >= SelectedLow && v < SelectedHigh:
			high++
		case v >= UnselectedLow && v < UnselectedHigh:
			low++
		default:
			t.Errorf("基因 %v 不在任何区间内", v)
		}
	}
	assert.Equal(t, p, high)
	assert.Equal(t, len(ind)-p, low)
}

func randomVector(rng *rand.Rand, n int) Individual {
	ind := make(Individual, n)
	for i := range ind {
		ind[i] = rng.Float64()
	}
	return ind
}

func sortedTop(ind Individual, p int) []int {
	top := slices.Clone(TopIndices(ind, p))
	slices.Sort(top)
	return top
}

func TestRepairSeparatesBands(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	for n := 1; n <= 12; n++ {
		for p := 1; p <= n; p++ {
			assertRepaired(t, Repair(rng, randomVector(rng, n), p), p)
		}
	}
}

func TestRepairPreservesMembership(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))

	for trial := 0; trial < 50; trial++ {
		ind := randomVector(rng, 15)
		before := slices.Clone(ind)

		repaired := Repair(rng, ind, 4)
		assert.Equal(t, sortedTop(ind, 4), sortedTop(repaired, 4))
		assert.Equal(t, before, ind)

		// 再次修复不会改变选中集合
		again := Repair(rng, repaired, 4)
		assert.Equal(t, sortedTop(repaired, 4), sortedTop(again, 4))
	}
}

func TestRepairSelectsAllWhenPEqualsN(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))

	repaired := Repair(rng, Individual{0.1, 0.5, 0.2}, 3)
	for _, v := range repaired {
		assert.GreaterOrEqual(t, v, SelectedLow)
		assert.Less(t, v, SelectedHigh)
	}
}

func TestTopIndicesTieBreak(t *testing.T) {
	ind := Individual{0.5, 0.8, 0.5, 0.5, 0.2}

	assert.Equal(t, []int{1, 0, 2}, TopIndices(ind, 3))
	assert.Equal(t, []int{0, 1, 2}, Decode(ind, 3))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, Decode(ind, 10))
	assert.Empty(t, TopIndices(ind, 0))
}

func TestRandomIndividualIsRepaired(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))

	for i := 0; i < 20; i++ {
		ind := randomIndividual(rng, 9, 3)
		require.Len(t, ind, 9)
		assertRepaired(t, ind, 3)
	}
}
