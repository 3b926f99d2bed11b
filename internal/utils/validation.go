package utils

import (
	"errors"
	"math"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/optimizer"
)

func ValidateCoordinate(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsNaN(longitude) || math.IsInf(latitude, 0) || math.IsInf(longitude, 0) {
		return errors.New("坐标必须是有限数")
	}
	if latitude < -90 || latitude > 90 {
		return errors.New("纬度必须在 [-90, 90] 之间")
	}
	if longitude < -180 || longitude > 180 {
		return errors.New("经度必须在 [-180, 180] 之间")
	}
	return nil
}

// ValidateOptimizationParameters 在任务入队之前检查参数，避免 worker 领取之后才发现参数不合法
// candidateCount 为当前数据库中候选停车场的数量
func ValidateOptimizationParameters(p domain.OptimizationParameters, candidateCount int) error {
	if math.IsNaN(p.CoverRadius) || math.IsInf(p.CoverRadius, 0) || p.CoverRadius <= 0 {
		return &domain.ConfigurationError{Field: "coverRadius", Reason: "覆盖半径必须为正数"}
	}
	return optimizer.FromDomain(p).Validate(candidateCount)
}
