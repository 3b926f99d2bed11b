package optimizer

import (
	"cmp"
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"golang.org/x/sync/errgroup"
)

type StopReason string

const (
	StopCompleted  StopReason = "completed"
	StopTimeBudget StopReason = "time_budget"
	StopCancelled  StopReason = "cancelled"
)

// GenerationHook 每一代计算完适应度之后被调用
type GenerationHook func(generation int, best float64)

type Optimizer struct {
	parameters Parameters
	problem    *Problem
	rng        *rand.Rand
	hook       GenerationHook
	logger     *slog.Logger
}

// Result 最终种群中适应度最高的个体及运行信息
type Result struct {
	Best           Individual `json:"best"`
	Selected       []int      `json:"selected"`
	CoveredWeight  float64    `json:"coveredWeight"`
	ExistingWeight float64    `json:"existingWeight"`
	NewWeight      float64    `json:"newWeight"`
	TotalWeight    float64    `json:"totalWeight"`
	Trace          []float64  `json:"trace"`
	Generations    int        `json:"generations"`
	StopReason     StopReason `json:"stopReason"`
	Degenerate     bool       `json:"degenerate"` // 所有需求点权重均为 0
}

func New(m *coverage.Matrix, parameters Parameters) (*Optimizer, error) {
	if err := parameters.Validate(m.CandidateCount()); err != nil {
		return nil, err
	}

	problem, err := NewProblem(m, parameters.SelectCount)
	if err != nil {
		return nil, err
	}

	parameters.TournamentSize = parameters.tournamentSize()

	var rng *rand.Rand
	if parameters.Seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(parameters.Seed, parameters.Seed))
	}

	return &Optimizer{
		parameters: parameters,
		problem:    problem,
		rng:        rng,
		logger:     slog.Default(),
	}, nil
}

func (o *Optimizer) OnGeneration(hook GenerationHook) {
	o.hook = hook
}

func (o *Optimizer) SetLogger(logger *slog.Logger) {
	o.logger = logger
}

func (o *Optimizer) Problem() *Problem {
	return o.problem
}

// Run 执行遗传算法直到达到最大迭代次数、时间上限或 ctx 被取消
// ctx 被取消时仍然返回当前种群中的最优解，同时返回 ctx.Err()
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	m := o.problem.Coverage()
	n := o.problem.CandidateCount()
	p := o.problem.SelectCount()

	degenerate := m.TotalWeight() == 0
	if degenerate {
		o.logger.Warn("所有需求点的人口权重均为 0，适应度将恒为 0", "demand", m.DemandCount())
	}

	// 生成初始种群
	pop := make([]Individual, o.parameters.PopulationSize)
	for i := range pop {
		pop[i] = randomIndividual(o.rng, n, p)
	}

	var deadline time.Time
	if o.parameters.TimeBudget > 0 {
		deadline = time.Now().Add(o.parameters.TimeBudget)
	}

	trace := make([]float64, 0, o.parameters.MaxGenerations)
	reason := StopCompleted
	var runErr error

	for gen := 0; gen < o.parameters.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			reason = StopCancelled
			runErr = err
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			reason = StopTimeBudget
			break
		}

		fitnesses, err := o.evaluate(ctx, pop)
		if err != nil {
			reason = StopCancelled
			runErr = err
			break
		}

		best := slices.Max(fitnesses)
		trace = append(trace, best)
		if o.hook != nil {
			o.hook(gen, best)
		}

		// 选择
		parents := TournamentSelect(o.rng, pop, fitnesses, o.parameters.TournamentSize)

		// 交叉与变异
		offspring := o.breed(parents)

		// 保留精英
		if o.parameters.EliteCount > 0 {
			keepElite(offspring, pop, fitnesses, o.parameters.EliteCount)
		}

		pop = offspring
	}

	// 输出最优解
	fitnesses := make([]float64, len(pop))
	for i, ind := range pop {
		fitnesses[i] = o.problem.Fitness(ind)
	}
	bestIdx := 0
	for i := range fitnesses {
		if fitnesses[i] > fitnesses[bestIdx] {
			bestIdx = i
		}
	}

	existing := m.ExistingWeight()
	result := &Result{
		Best:           pop[bestIdx].Clone(),
		Selected:       Decode(pop[bestIdx], p),
		CoveredWeight:  fitnesses[bestIdx],
		ExistingWeight: existing,
		NewWeight:      fitnesses[bestIdx] - existing,
		TotalWeight:    m.TotalWeight(),
		Trace:          trace,
		Generations:    len(trace),
		StopReason:     reason,
		Degenerate:     degenerate,
	}

	return result, runErr
}

// evaluate 计算整个种群的适应度；适应度只读取不可变的覆盖矩阵，可以安全地并行
func (o *Optimizer) evaluate(ctx context.Context, pop []Individual) ([]float64, error) {
	fitnesses := make([]float64, len(pop))

	if o.parameters.Parallelism <= 1 {
		for i, ind := range pop {
			fitnesses[i] = o.problem.Fitness(ind)
		}
		return fitnesses, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parameters.Parallelism)
	for i, ind := range pop {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fitnesses[i] = o.problem.Fitness(ind)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fitnesses, nil
}

// breed 相邻两个父代按交叉概率进行算术交叉，然后对所有子代进行变异
// 种群大小为奇数时，最后一个父代不参与交叉，直接进入变异
func (o *Optimizer) breed(parents []Individual) []Individual {
	p := o.problem.SelectCount()
	offspring := make([]Individual, 0, len(parents))

	for i := 0; i+1 < len(parents); i += 2 {
		if o.rng.Float64() < o.parameters.CrossoverRate {
			child1, child2 := Crossover(o.rng, parents[i], parents[i+1], p)
			offspring = append(offspring, child1, child2)
		} else {
			offspring = append(offspring, parents[i], parents[i+1])
		}
	}
	if len(parents)%2 == 1 {
		offspring = append(offspring, parents[len(parents)-1])
	}

	for i := range offspring {
		offspring[i] = Mutate(o.rng, offspring[i], o.parameters.MutationRate, o.parameters.MutationScale, p)
	}

	return offspring
}

// keepElite 用上一代最优的 count 个个体替换子代末尾的个体
func keepElite(offspring, pop []Individual, fitnesses []float64, count int) {
	order := make([]int, len(pop))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(fitnesses[b], fitnesses[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	for e := 0; e < count; e++ {
		offspring[len(offspring)-1-e] = pop[order[e]].Clone()
	}
}
