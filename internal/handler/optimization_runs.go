package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

func (h *Handler) GetAllOptimizationRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repository.GetAllOptimizationRuns()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取优化任务列表成功", runs)
}

func (h *Handler) GetOptimizationRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)
	h.successResponse(w, r, "获取优化任务成功", run)
}

func (h *Handler) CreateOptimizationRun(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 请求中没有出现的字段保留默认值
	params := h.config.OptimizationDefaults()
	if !h.decodeAndValidate(w, r, &params) {
		return
	}

	candidateCount, err := h.repository.CountParkingLots()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateOptimizationParameters(params, candidateCount); err != nil {
		h.badRequest(w, r, err)
		return
	}

	active, err := h.repository.CountActiveOptimizationRuns(userID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if active >= h.config.RateLimit.MaxActiveRuns {
		h.errorResponse(w, r, "您已有任务正在排队或运行，请等待其完成")
		return
	}

	run := &domain.OptimizationRun{
		Parameters:  params,
		RequestedBy: userID,
	}
	if err := h.repository.CreateOptimizationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	jobID, err := h.publishJob(run.ID)
	if err != nil {
		// 任务没能进入队列，不能让它一直处于 pending 状态
		if failErr := h.repository.FailOptimizationRun(run, "任务投递失败"); failErr != nil {
			h.logInternalServerError(r, failErr)
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "优化任务已提交", struct {
		JobID string                  `json:"jobID"`
		Run   *domain.OptimizationRun `json:"run"`
	}{JobID: jobID, Run: run})
}

// GetOptimizationRunProgress 运行中的任务从 redis 读取实时的适应度曲线，已结束的任务直接返回数据库中的结果
func (h *Handler) GetOptimizationRunProgress(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	trace := run.FitnessTrace
	if run.Status == domain.OptimizationRunPending || run.Status == domain.OptimizationRunRunning {
		live, err := h.progress.Trace(r.Context(), run.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		trace = live
	}
	if trace == nil {
		trace = []float64{}
	}

	h.successResponse(w, r, "获取优化进度成功", progressResponse{
		Status:         run.Status,
		Generations:    len(trace),
		MaxGenerations: run.Parameters.MaxGenerations,
		Trace:          trace,
	})
}

type progressResponse struct {
	Status         domain.OptimizationRunStatus `json:"status"`
	Generations    int                          `json:"generations"`
	MaxGenerations int                          `json:"maxGenerations"`
	Trace          []float64                    `json:"trace"`
}
