package worker

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/coverage"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/optimizer"
)

// 三个社区沿赤道相隔一个经度，现有充电站只覆盖第一个社区
func fixture(t *testing.T) ([]*domain.ParkingLot, *coverage.Matrix) {
	t.Helper()

	communities := []*domain.Community{
		{ID: 1, Name: "甲", Longitude: 0, Population: 10},
		{ID: 2, Name: "乙", Longitude: 1, Population: 20},
		{ID: 3, Name: "丙", Longitude: 2, Population: 5},
	}
	stations := []*domain.ChargingStation{{ID: 1, Name: "现有站", Longitude: 0}}
	lots := []*domain.ParkingLot{
		{ID: 11, Name: "一号停车场", Longitude: 1, Capacity: 50},
		{ID: 12, Name: "二号停车场", Longitude: 2},
	}

	demand, existing, candidates := toInputs(communities, stations, lots)
	require.Len(t, demand, 3)
	require.Len(t, existing, 1)
	require.Len(t, candidates, 2)
	assert.Equal(t, 20.0, demand[1].Weight)

	m, err := coverage.Build(demand, existing, candidates, 5)
	require.NoError(t, err)
	return lots, m
}

func TestApplyResult(t *testing.T) {
	lots, _ := fixture(t)

	run := &domain.OptimizationRun{ID: 3}
	res := &optimizer.Result{
		Selected:       []int{1, 0},
		CoveredWeight:  35,
		ExistingWeight: 10,
		TotalWeight:    35,
		Trace:          []float64{30, 35},
		Generations:    2,
		StopReason:     optimizer.StopCompleted,
	}
	require.NoError(t, applyResult(run, res, lots))

	assert.Equal(t, []int64{12, 11}, run.SelectedLotIDs)
	assert.Equal(t, 35.0, run.CoveredWeight)
	assert.Equal(t, 10.0, run.ExistingWeight)
	assert.Equal(t, []float64{30, 35}, run.FitnessTrace)
	assert.Equal(t, 2, run.Generations)
	assert.Equal(t, string(optimizer.StopCompleted), run.StopReason)
}

func TestApplyResultRejectsOutOfRangeIndex(t *testing.T) {
	lots, _ := fixture(t)

	err := applyResult(&domain.OptimizationRun{}, &optimizer.Result{Selected: []int{2}}, lots)
	assert.Error(t, err)
}

func TestBuildRecommendations(t *testing.T) {
	lots, m := fixture(t)

	recs := buildRecommendations(7, &optimizer.Result{Selected: []int{0, 1}}, lots, m)
	require.Len(t, recs, 2)

	assert.Equal(t, "一号停车场", recs[0].Name)
	assert.Equal(t, 20.0, recs[0].Score)
	assert.Contains(t, recs[0].Factors, "车位 50 个")
	require.NotNil(t, recs[0].OptimizationRunID)
	assert.Equal(t, int64(7), *recs[0].OptimizationRunID)

	assert.Equal(t, 5.0, recs[1].Score)
	assert.Len(t, recs[1].Factors, 2)
}

func TestFinishedMailData(t *testing.T) {
	lots, m := fixture(t)
	user := &domain.User{FullName: "张三", Email: "zhangsan@example.com"}
	recs := buildRecommendations(1, &optimizer.Result{Selected: []int{0}}, lots, m)

	t.Run("成功", func(t *testing.T) {
		run := &domain.OptimizationRun{ID: 1, Status: domain.OptimizationRunSucceeded, CoveredWeight: 30, TotalWeight: 35}
		data := finishedMailData(user, run, recs)
		assert.Equal(t, "张三", data.FullName)
		require.Len(t, data.Sites, 1)
		assert.Equal(t, 20.0, data.Sites[0].Gain)
	})

	t.Run("失败", func(t *testing.T) {
		run := &domain.OptimizationRun{ID: 1, Status: domain.OptimizationRunFailed, ErrorMessage: "参数 selectCount 不合法"}
		data := finishedMailData(user, run, nil)
		assert.Empty(t, data.Sites)
		assert.Equal(t, "参数 selectCount 不合法", data.ErrorMessage)
	})
}

type fakeSaver struct {
	err   error
	saved []*domain.Recommendation
}

func (f *fakeSaver) CreateRecommendations(recs []*domain.Recommendation) error {
	if f.err != nil {
		return f.err
	}
	f.saved = recs
	return nil
}

func TestSaveRecommendations(t *testing.T) {
	lots, m := fixture(t)
	recs := buildRecommendations(2, &optimizer.Result{Selected: []int{0, 1}}, lots, m)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &domain.User{FullName: "王五"}
	run := &domain.OptimizationRun{ID: 2, Status: domain.OptimizationRunSucceeded}

	t.Run("保存成功", func(t *testing.T) {
		saver := &fakeSaver{}
		kept := saveRecommendations(saver, recs, logger)
		assert.Len(t, kept, 2)
		assert.Len(t, saver.saved, 2)
		assert.Len(t, finishedMailData(user, run, kept).Sites, 2)
	})

	t.Run("保存失败时邮件不列出站点", func(t *testing.T) {
		kept := saveRecommendations(&fakeSaver{err: errors.New("连接断开")}, recs, logger)
		assert.Nil(t, kept)
		assert.Empty(t, finishedMailData(user, run, kept).Sites)
	})
}
