package optimizer

import (
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

// Problem 一次运行中所有算子共享的只读上下文
type Problem struct {
	coverage    *coverage.Matrix
	selectCount int
}

func NewProblem(m *coverage.Matrix, selectCount int) (*Problem, error) {
	if m.DemandCount() == 0 {
		return nil, &domain.ConfigurationError{Field: "demand", Reason: "需求点集合为空"}
	}
	if m.CandidateCount() == 0 {
		return nil, &domain.ConfigurationError{Field: "candidates", Reason: "候选设施集合为空"}
	}
	if selectCount <= 0 || selectCount > m.CandidateCount() {
		return nil, &domain.ConfigurationError{Field: "selectCount", Reason: "选择数量必须在 [1, 候选设施数量] 之间"}
	}

	return &Problem{coverage: m, selectCount: selectCount}, nil
}

func (pr *Problem) CandidateCount() int {
	return pr.coverage.CandidateCount()
}

func (pr *Problem) SelectCount() int {
	return pr.selectCount
}

func (pr *Problem) Coverage() *coverage.Matrix {
	return pr.coverage
}

// Fitness 个体所覆盖的人口总数（现有设施 + 新建设施）
func (pr *Problem) Fitness(ind Individual) float64 {
	return pr.CoveredWeight(TopIndices(ind, pr.selectCount))
}

// CoveredWeight 新建 selected 中的候选设施之后被覆盖的人口总数
func (pr *Problem) CoveredWeight(selected []int) float64 {
	m := pr.coverage

	covered := make([]bool, m.DemandCount())
	copy(covered, m.ExistingTotal)
	for _, i := range selected {
		for j, c := range m.Candidate[i] {
			if c {
				covered[j] = true
			}
		}
	}

	total := 0.0
	for j, c := range covered {
		if c {
			total += m.Weights[j]
		}
	}
	return total
}
