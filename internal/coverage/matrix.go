package coverage

import (
	"math"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/geo"
)

// Matrix 保存设施对需求点的覆盖关系，构建之后不再修改
type Matrix struct {
	Existing      [][]bool // [现有设施][需求点]
	Candidate     [][]bool // [候选设施][需求点]，已经去掉了现有设施覆盖到的需求点
	ExistingTotal []bool   // 每个需求点是否已被任一现有设施覆盖
	Weights       []float64
	RadiusKm      float64
}

// Build 计算现有设施和候选设施的覆盖矩阵
// 候选设施只统计现有设施尚未覆盖的需求点，避免重复计算
func Build(demand []domain.DemandPoint, existing, candidates []domain.Facility, radiusKm float64) (*Matrix, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return nil, &domain.ConfigurationError{Field: "coverRadius", Reason: "覆盖半径必须为正数"}
	}

	weights := make([]float64, len(demand))
	for j, d := range demand {
		if err := validateCoordinate("demand", j, d.Location); err != nil {
			return nil, err
		}
		if math.IsNaN(d.Weight) || math.IsInf(d.Weight, 0) || d.Weight < 0 {
			return nil, &domain.InputDataError{Dataset: "demand", Index: j, Reason: "人口权重必须为非负有限数"}
		}
		weights[j] = d.Weight
	}
	for i, f := range existing {
		if err := validateCoordinate("existing", i, f.Location); err != nil {
			return nil, err
		}
	}
	for i, f := range candidates {
		if err := validateCoordinate("candidate", i, f.Location); err != nil {
			return nil, err
		}
	}

	m := &Matrix{
		Existing:      coverRows(existing, demand, radiusKm),
		Candidate:     coverRows(candidates, demand, radiusKm),
		ExistingTotal: make([]bool, len(demand)),
		Weights:       weights,
		RadiusKm:      radiusKm,
	}

	for _, row := range m.Existing {
		for j, covered := range row {
			if covered {
				m.ExistingTotal[j] = true
			}
		}
	}

	// 新建设施只能覆盖未被现有设施覆盖的区域
	for _, row := range m.Candidate {
		for j := range row {
			row[j] = row[j] && !m.ExistingTotal[j]
		}
	}

	return m, nil
}

func coverRows(facilities []domain.Facility, demand []domain.DemandPoint, radiusKm float64) [][]bool {
	rows := make([][]bool, len(facilities))
	for i, f := range facilities {
		rows[i] = make([]bool, len(demand))
		for j, d := range demand {
			rows[i][j] = geo.Distance(f.Location, d.Location) <= radiusKm
		}
	}
	return rows
}

func validateCoordinate(dataset string, index int, c domain.Coordinate) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return &domain.InputDataError{Dataset: dataset, Index: index, Reason: "坐标不是有限数"}
	}
	if c.Lat < -90 || c.Lat > 90 {
		return &domain.InputDataError{Dataset: dataset, Index: index, Reason: "纬度超出 [-90, 90]"}
	}
	if c.Lng < -180 || c.Lng > 180 {
		return &domain.InputDataError{Dataset: dataset, Index: index, Reason: "经度超出 [-180, 180]"}
	}
	return nil
}

func (m *Matrix) DemandCount() int {
	return len(m.Weights)
}

func (m *Matrix) CandidateCount() int {
	return len(m.Candidate)
}

// ExistingWeight 现有设施已覆盖的人口总数
func (m *Matrix) ExistingWeight() float64 {
	total := 0.0
	for j, covered := range m.ExistingTotal {
		if covered {
			total += m.Weights[j]
		}
	}
	return total
}

func (m *Matrix) TotalWeight() float64 {
	total := 0.0
	for _, w := range m.Weights {
		total += w
	}
	return total
}

// Gain 单独新建候选设施 i 所能新增覆盖的人口
func (m *Matrix) Gain(i int) float64 {
	total := 0.0
	for j, covered := range m.Candidate[i] {
		if covered {
			total += m.Weights[j]
		}
	}
	return total
}
