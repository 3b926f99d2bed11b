package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

func (h *Handler) GetAllCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := h.repository.GetAllCommunities()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取社区列表成功", communities)
}

func (h *Handler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string  `json:"name"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
		Population float64 `json:"population" validate:"min=0"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	community := &domain.Community{
		Name:       req.Name,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Population: req.Population,
	}
	if err := h.repository.CreateCommunity(community); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建社区成功", community)
}
