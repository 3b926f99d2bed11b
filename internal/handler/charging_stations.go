package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

func (h *Handler) GetAllChargingStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.repository.GetAllChargingStations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取充电站列表成功", stations)
}

func (h *Handler) GetChargingStation(w http.ResponseWriter, r *http.Request) {
	station := r.Context().Value(ChargingStationCtx).(*domain.ChargingStation)
	h.successResponse(w, r, "获取充电站成功", station)
}

func (h *Handler) CreateChargingStation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name" validate:"required"`
		Code      string  `json:"code"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Type      string  `json:"type"`
		Address   string  `json:"address"`
		Phone     string  `json:"phone"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 没有填写编码时根据名称生成
	if req.Code == "" {
		req.Code = utils.GenerateSiteCode("CS", req.Name)
	}

	station := &domain.ChargingStation{
		Name:      req.Name,
		Code:      req.Code,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Type:      req.Type,
		Address:   req.Address,
		Phone:     req.Phone,
	}
	if err := h.repository.CreateChargingStation(station); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建充电站成功", station)
}

func (h *Handler) UpdateChargingStation(w http.ResponseWriter, r *http.Request) {
	station := r.Context().Value(ChargingStationCtx).(*domain.ChargingStation)

	var req struct {
		Name      *string  `json:"name" validate:"omitempty,min=1"`
		Code      *string  `json:"code" validate:"omitempty,min=1"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Type      *string  `json:"type"`
		Address   *string  `json:"address"`
		Phone     *string  `json:"phone"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.Code != nil {
		station.Code = *req.Code
	}
	if req.Latitude != nil {
		station.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		station.Longitude = *req.Longitude
	}
	if req.Type != nil {
		station.Type = *req.Type
	}
	if req.Address != nil {
		station.Address = *req.Address
	}
	if req.Phone != nil {
		station.Phone = *req.Phone
	}

	if err := utils.ValidateCoordinate(station.Latitude, station.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateChargingStation(station); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新充电站失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新充电站成功", station)
}

func (h *Handler) DeleteChargingStation(w http.ResponseWriter, r *http.Request) {
	station := r.Context().Value(ChargingStationCtx).(*domain.ChargingStation)

	if err := h.repository.DeleteChargingStation(station.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除充电站成功", nil)
}
