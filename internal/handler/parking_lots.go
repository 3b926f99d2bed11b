package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
)

func (h *Handler) GetAllParkingLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.repository.GetAllParkingLots()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取停车场列表成功", lots)
}

func (h *Handler) GetParkingLot(w http.ResponseWriter, r *http.Request) {
	lot := r.Context().Value(ParkingLotCtx).(*domain.ParkingLot)
	h.successResponse(w, r, "获取停车场成功", lot)
}

func (h *Handler) CreateParkingLot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string  `json:"name" validate:"required"`
		Code            string  `json:"code"`
		Latitude        float64 `json:"latitude"`
		Longitude       float64 `json:"longitude"`
		Capacity        int32   `json:"capacity" validate:"min=0"`
		AvailableSpaces int32   `json:"availableSpaces" validate:"min=0,ltefield=Capacity"`
		Address         string  `json:"address"`
		Phone           string  `json:"phone"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Code == "" {
		req.Code = utils.GenerateSiteCode("PL", req.Name)
	}

	lot := &domain.ParkingLot{
		Name:            req.Name,
		Code:            req.Code,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Capacity:        req.Capacity,
		AvailableSpaces: req.AvailableSpaces,
		Address:         req.Address,
		Phone:           req.Phone,
	}
	if err := h.repository.CreateParkingLot(lot); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建停车场成功", lot)
}

func (h *Handler) UpdateParkingLot(w http.ResponseWriter, r *http.Request) {
	lot := r.Context().Value(ParkingLotCtx).(*domain.ParkingLot)

	var req struct {
		Name            *string  `json:"name" validate:"omitempty,min=1"`
		Code            *string  `json:"code" validate:"omitempty,min=1"`
		Latitude        *float64 `json:"latitude"`
		Longitude       *float64 `json:"longitude"`
		Capacity        *int32   `json:"capacity" validate:"omitempty,min=0"`
		AvailableSpaces *int32   `json:"availableSpaces" validate:"omitempty,min=0"`
		Address         *string  `json:"address"`
		Phone           *string  `json:"phone"`
	}

	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != nil {
		lot.Name = *req.Name
	}
	if req.Code != nil {
		lot.Code = *req.Code
	}
	if req.Latitude != nil {
		lot.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		lot.Longitude = *req.Longitude
	}
	if req.Capacity != nil {
		lot.Capacity = *req.Capacity
	}
	if req.AvailableSpaces != nil {
		lot.AvailableSpaces = *req.AvailableSpaces
	}
	if req.Address != nil {
		lot.Address = *req.Address
	}
	if req.Phone != nil {
		lot.Phone = *req.Phone
	}

	if err := utils.ValidateCoordinate(lot.Latitude, lot.Longitude); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if lot.AvailableSpaces > lot.Capacity {
		h.errorResponse(w, r, "空闲车位数不能超过总车位数")
		return
	}

	if err := h.repository.UpdateParkingLot(lot); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新停车场失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新停车场成功", lot)
}

func (h *Handler) DeleteParkingLot(w http.ResponseWriter, r *http.Request) {
	lot := r.Context().Value(ParkingLotCtx).(*domain.ParkingLot)

	if err := h.repository.DeleteParkingLot(lot.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除停车场成功", nil)
}
