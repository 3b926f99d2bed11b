package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

func (h *Handler) GetAllSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.repository.GetAllSites()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取站点列表成功", sites)
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)
	h.successResponse(w, r, "获取站点成功", site)
}

func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name" validate:"required"`
		Code        string  `json:"code"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Type        string  `json:"type"`
		Description string  `json:"description"`
		ImageURL    string  `json:"imageURL" validate:"omitempty,url"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Code == "" {
		req.Code = utils.GenerateSiteCode("ST", req.Name)
	}

	site := &domain.Site{
		Name:        req.Name,
		Code:        req.Code,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Type:        req.Type,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := h.repository.CreateSite(site); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建站点成功", site)
}

func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)

	var req struct {
		Name        *string  `json:"name" validate:"omitempty,min=1"`
		Code        *string  `json:"code" validate:"omitempty,min=1"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		Type        *string  `json:"type"`
		Description *string  `json:"description"`
		ImageURL    *string  `json:"imageURL" validate:"omitempty,url"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Code != nil {
		site.Code = *req.Code
	}
	if req.Latitude != nil {
		site.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		site.Longitude = *req.Longitude
	}
	if req.Type != nil {
		site.Type = *req.Type
	}
	if req.Description != nil {
		site.Description = *req.Description
	}
	if req.ImageURL != nil {
		site.ImageURL = *req.ImageURL
	}

	if err := utils.ValidateCoordinate(site.Latitude, site.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateSite(site); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新站点失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新站点成功", site)
}

func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)

	if err := h.repository.DeleteSite(site.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除站点成功", nil)
}
