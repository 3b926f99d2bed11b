package optimizer

import (
	"math"
	"time"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

// 修复之后被选中的基因落在 [SelectedLow, SelectedHigh)，其余落在 [UnselectedLow, UnselectedHigh)
const (
	SelectedLow    = 0.7
	SelectedHigh   = 1.0
	UnselectedLow  = 0.0
	UnselectedHigh = 0.3
)

const DefaultTournamentSize = 3

// Individual 个体编码：每个候选设施一个 [0,1] 的优先级
type Individual []float64

func (ind Individual) Clone() Individual {
	c := make(Individual, len(ind))
	copy(c, ind)
	return c
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int           // 种群大小
	SelectCount    int           // 需建设的设施数量 P
	MutationRate   float64       // 每个基因的变异概率
	MutationScale  float64       // 高斯变异的标准差
	CrossoverRate  float64       // 交叉概率
	MaxGenerations int           // 最大迭代次数
	TournamentSize int           // 锦标赛规模，0 表示使用默认值 3
	EliteCount     int           // 精英保留数量，默认为 0 即不保留
	Seed           uint64        // 随机种子，0 表示随机
	Parallelism    int           // 并行计算适应度的协程数，<= 1 表示串行
	TimeBudget     time.Duration // 运行时间上限，0 表示不限制
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 100,
		SelectCount:    20,
		MutationRate:   0.1,
		MutationScale:  0.1,
		CrossoverRate:  0.8,
		MaxGenerations: 200,
		TournamentSize: DefaultTournamentSize,
	}
}

func FromDomain(p domain.OptimizationParameters) Parameters {
	return Parameters{
		PopulationSize: p.PopulationSize,
		SelectCount:    p.SelectCount,
		MutationRate:   p.MutationRate,
		MutationScale:  p.MutationScale,
		CrossoverRate:  p.CrossoverRate,
		MaxGenerations: p.MaxGenerations,
		TournamentSize: p.TournamentSize,
		EliteCount:     p.EliteCount,
		Seed:           p.Seed,
		Parallelism:    p.Parallelism,
		TimeBudget:     time.Duration(p.TimeBudgetSeconds) * time.Second,
	}
}

func (p Parameters) tournamentSize() int {
	if p.TournamentSize == 0 {
		return DefaultTournamentSize
	}
	return p.TournamentSize
}

// Validate 在进化开始之前检查参数，candidateCount 为候选设施数量
func (p Parameters) Validate(candidateCount int) error {
	switch {
	case candidateCount <= 0:
		return &domain.ConfigurationError{Field: "candidates", Reason: "候选设施集合为空"}
	case p.PopulationSize <= 0:
		return &domain.ConfigurationError{Field: "populationSize", Reason: "种群大小必须为正整数"}
	case p.MaxGenerations <= 0:
		return &domain.ConfigurationError{Field: "maxGenerations", Reason: "最大迭代次数必须为正整数"}
	case p.SelectCount <= 0:
		return &domain.ConfigurationError{Field: "selectCount", Reason: "至少需要选择一个候选设施"}
	case p.SelectCount > candidateCount:
		return &domain.ConfigurationError{Field: "selectCount", Reason: "选择数量不能超过候选设施数量"}
	case !inUnitInterval(p.MutationRate):
		return &domain.ConfigurationError{Field: "mutationRate", Reason: "变异概率必须在 [0,1] 之间"}
	case !inUnitInterval(p.CrossoverRate):
		return &domain.ConfigurationError{Field: "crossoverRate", Reason: "交叉概率必须在 [0,1] 之间"}
	case math.IsNaN(p.MutationScale) || math.IsInf(p.MutationScale, 0) || p.MutationScale <= 0:
		return &domain.ConfigurationError{Field: "mutationScale", Reason: "变异强度必须为正数"}
	case p.tournamentSize() < 1 || p.tournamentSize() > p.PopulationSize:
		return &domain.ConfigurationError{Field: "tournamentSize", Reason: "锦标赛规模必须在 [1, 种群大小] 之间"}
	case p.EliteCount < 0 || p.EliteCount >= p.PopulationSize:
		return &domain.ConfigurationError{Field: "eliteCount", Reason: "精英数量必须在 [0, 种群大小) 之间"}
	case p.Parallelism < 0:
		return &domain.ConfigurationError{Field: "parallelism", Reason: "并行度不能为负数"}
	case p.TimeBudget < 0:
		return &domain.ConfigurationError{Field: "timeBudget", Reason: "时间上限不能为负数"}
	}
	return nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
