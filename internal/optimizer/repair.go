package optimizer

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// TopIndices 返回优先级最高的 p 个位置
// 按 (值降序, 下标升序) 排序，值相同时下标小的优先
func TopIndices(ind Individual, p int) []int {
	if p > len(ind) {
		p = len(ind)
	}
	if p <= 0 {
		return []int{}
	}

	order := make([]int, len(ind))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(ind[b], ind[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	return order[:p]
}

// Decode 将个体解码为选中的候选设施下标（升序）
func Decode(ind Individual, p int) []int {
	selected := slices.Clone(TopIndices(ind, p))
	slices.Sort(selected)
	return selected
}

// Repair 保证个体恰好选中 p 个设施
// 原来的前 p 个位置重新取 [0.7,1.0) 内的随机值，其余位置重新取 [0.0,0.3) 内的随机值
func Repair(rng *rand.Rand, ind Individual, p int) Individual {
	selected := make([]bool, len(ind))
	for _, i := range TopIndices(ind, p) {
		selected[i] = true
	}

	// p == len(ind) 时没有未选中的位置，第二个区间自然不会被赋值
	repaired := make(Individual, len(ind))
	for i := range repaired {
		if selected[i] {
			repaired[i] = SelectedLow + (SelectedHigh-SelectedLow)*rng.Float64()
		} else {
			repaired[i] = UnselectedLow + (UnselectedHigh-UnselectedLow)*rng.Float64()
		}
	}

	return repaired
}

// randomIndividual 随机初始化一个个体并修复
func randomIndividual(rng *rand.Rand, n, p int) Individual {
	ind := make(Individual, n)
	for i := range ind {
		ind[i] = rng.Float64()
	}
	return Repair(rng, ind, p)
}
