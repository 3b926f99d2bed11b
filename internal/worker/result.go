package worker

import (
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/optimizer"
)

// toInputs 转换为覆盖矩阵的输入，候选设施的下标与 lots 的顺序一致
func toInputs(communities []*domain.Community, stations []*domain.ChargingStation, lots []*domain.ParkingLot) ([]domain.DemandPoint, []domain.Facility, []domain.Facility) {
	demand := make([]domain.DemandPoint, len(communities))
	for i, c := range communities {
		demand[i] = c.DemandPoint()
	}
	existing := make([]domain.Facility, len(stations))
	for i, s := range stations {
		existing[i] = s.Facility()
	}
	candidates := make([]domain.Facility, len(lots))
	for i, l := range lots {
		candidates[i] = l.Facility()
	}
	return demand, existing, candidates
}

// applyResult 把优化结果写回任务，候选下标换成停车场 ID
func applyResult(run *domain.OptimizationRun, res *optimizer.Result, lots []*domain.ParkingLot) error {
	ids := make([]int64, 0, len(res.Selected))
	for _, idx := range res.Selected {
		if idx < 0 || idx >= len(lots) {
			return fmt.Errorf("候选下标 %d 超出范围", idx)
		}
		ids = append(ids, lots[idx].ID)
	}

	run.SelectedLotIDs = ids
	run.CoveredWeight = res.CoveredWeight
	run.ExistingWeight = res.ExistingWeight
	run.TotalWeight = res.TotalWeight
	run.FitnessTrace = res.Trace
	run.Generations = res.Generations
	run.StopReason = string(res.StopReason)
	return nil
}

// buildRecommendations 为每个选中的停车场生成一条推荐，分数为其单独新增覆盖的人口
func buildRecommendations(runID int64, res *optimizer.Result, lots []*domain.ParkingLot, m *coverage.Matrix) []*domain.Recommendation {
	recs := make([]*domain.Recommendation, 0, len(res.Selected))
	for _, idx := range res.Selected {
		lot := lots[idx]
		gain := m.Gain(idx)
		factors := []string{
			fmt.Sprintf("新增覆盖人口 %.0f", gain),
			fmt.Sprintf("覆盖半径 %.1f 公里", m.RadiusKm),
		}
		if lot.Capacity > 0 {
			factors = append(factors, fmt.Sprintf("车位 %d 个", lot.Capacity))
		}

		id := runID
		recs = append(recs, &domain.Recommendation{
			Name:              lot.Name,
			Latitude:          lot.Latitude,
			Longitude:         lot.Longitude,
			Score:             gain,
			Factors:           factors,
			Notes:             fmt.Sprintf("由优化任务 #%d 生成", runID),
			OptimizationRunID: &id,
		})
	}
	return recs
}

func finishedMailData(user *domain.User, run *domain.OptimizationRun, recs []*domain.Recommendation) domain.OptimizationFinishedMailData {
	data := domain.OptimizationFinishedMailData{
		FullName:      user.FullName,
		RunID:         run.ID,
		Status:        run.Status,
		CoveredWeight: run.CoveredWeight,
		TotalWeight:   run.TotalWeight,
		Generations:   run.Generations,
		ErrorMessage:  run.ErrorMessage,
	}
	if run.Status != domain.OptimizationRunSucceeded {
		return data
	}
	for _, rec := range recs {
		data.Sites = append(data.Sites, domain.SelectedSiteMailData{
			Name:      rec.Name,
			Longitude: rec.Longitude,
			Latitude:  rec.Latitude,
			Gain:      rec.Score,
		})
	}
	return data
}

type recommendationSaver interface {
	CreateRecommendations(recs []*domain.Recommendation) error
}

// saveRecommendations 返回实际保存成功的推荐，保存失败时通知邮件中不再列出站点
func saveRecommendations(saver recommendationSaver, recs []*domain.Recommendation, logger *slog.Logger) []*domain.Recommendation {
	if err := saver.CreateRecommendations(recs); err != nil {
		logger.Error("无法保存推荐站点", "error", err)
		return nil
	}
	return recs
}
