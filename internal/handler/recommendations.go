package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

func (h *Handler) GetAllRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repository.GetAllRecommendations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取推荐点列表成功", recs)
}

func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecommendationCtx).(*domain.Recommendation)
	h.successResponse(w, r, "获取推荐点成功", rec)
}

// CreateRecommendation 手动添加的推荐点，不关联任何优化任务
func (h *Handler) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string   `json:"name" validate:"required"`
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Score     float64  `json:"score" validate:"min=0"`
		Factors   []string `json:"factors" validate:"dive,required"`
		Notes     string   `json:"notes"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rec := &domain.Recommendation{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Score:     req.Score,
		Factors:   req.Factors,
		Notes:     req.Notes,
	}
	if err := h.repository.CreateRecommendation(rec); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建推荐点成功", rec)
}

func (h *Handler) UpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecommendationCtx).(*domain.Recommendation)

	var req struct {
		Name      *string   `json:"name" validate:"omitempty,min=1"`
		Latitude  *float64  `json:"latitude"`
		Longitude *float64  `json:"longitude"`
		Score     *float64  `json:"score" validate:"omitempty,min=0"`
		Factors   *[]string `json:"factors"`
		Notes     *string   `json:"notes"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != nil {
		rec.Name = *req.Name
	}
	if req.Latitude != nil {
		rec.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		rec.Longitude = *req.Longitude
	}
	if req.Score != nil {
		rec.Score = *req.Score
	}
	if req.Factors != nil {
		rec.Factors = *req.Factors
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}

	if err := utils.ValidateCoordinate(rec.Latitude, rec.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateRecommendation(rec); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新推荐点失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新推荐点成功", rec)
}

func (h *Handler) DeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecommendationCtx).(*domain.Recommendation)

	if err := h.repository.DeleteRecommendation(rec.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除推荐点成功", nil)
}
