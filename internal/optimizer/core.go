package optimizer

import "math/rand/v2"

// TournamentSelect 锦标赛选择
// 每个位置从种群中无放回地抽取 size 个不同的个体，保留适应度最高的一个（并列时先抽到的胜出）
// 返回的是副本，不会修改原种群
func TournamentSelect(rng *rand.Rand, pop []Individual, fitnesses []float64, size int) []Individual {
	n := len(pop)
	if size > n {
		size = n
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	selected := make([]Individual, n)
	for s := range selected {
		// 部分 Fisher-Yates 洗牌，前 size 个即为本轮参赛者
		for i := 0; i < size; i++ {
			j := i + rng.IntN(n-i)
			idx[i], idx[j] = idx[j], idx[i]
		}

		winner := idx[0]
		for _, c := range idx[1:size] {
			if fitnesses[c] > fitnesses[winner] {
				winner = c
			}
		}
		selected[s] = pop[winner].Clone()
	}

	return selected
}

// Crossover 算术交叉，两个子代都会被修复
func Crossover(rng *rand.Rand, parent1, parent2 Individual, p int) (Individual, Individual) {
	alpha := rng.Float64()

	child1 := make(Individual, len(parent1))
	child2 := make(Individual, len(parent1))
	for i := range parent1 {
		child1[i] = alpha*parent1[i] + (1-alpha)*parent2[i]
		child2[i] = alpha*parent2[i] + (1-alpha)*parent1[i]
	}

	return Repair(rng, child1, p), Repair(rng, child2, p)
}

// Mutate 高斯变异：每个基因以 rate 的概率加上 N(0, scale) 的噪声，截断到 [0,1] 后修复
func Mutate(rng *rand.Rand, ind Individual, rate, scale float64, p int) Individual {
	mutated := make(Individual, len(ind))
	for i, v := range ind {
		if rng.Float64() < rate {
			v += rng.NormFloat64() * scale
		}
		mutated[i] = min(max(v, 0), 1)
	}

	return Repair(rng, mutated, p)
}
