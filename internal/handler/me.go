package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8,nefield=OldPassword"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "旧密码错误")
		return
	}

	var err error
	if myInfo.PasswordHash, err = hashPassword(req.NewPassword); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := h.repository.UpdateUser(myInfo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "更新密码失败，请重试")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新密码成功", nil)
}

func (h *Handler) RequireUpdateEmail(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		NewEmail string `json:"newEmail" validate:"required,email"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	exists, err := h.repository.CheckEmailIfExists(req.NewEmail)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.errorResponse(w, r, "邮箱已被占用")
		return
	}

	// 验证码发送到新邮箱，以确认邮箱属于本人
	err = h.sendOTP(r.Context(), changeEmailOTPKey(myInfo.Username, req.NewEmail), "change_email", req.NewEmail, func(otp string, minutes int) any {
		return domain.ChangeEmailMailData{FullName: myInfo.FullName, OTP: otp, Expiration: minutes}
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更改邮箱所需验证码已通过邮件发送", nil)
}

func (h *Handler) ConfirmUpdateEmail(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OTP      string `json:"otp" validate:"required"`
		NewEmail string `json:"newEmail" validate:"required,email"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	key := changeEmailOTPKey(myInfo.Username, req.NewEmail)
	ok, err := h.verifyOTP(r.Context(), key, req.OTP)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "验证码错误")
		return
	}

	myInfo.Email = req.NewEmail
	if err := h.repository.UpdateUser(myInfo); err != nil {
		if msg, ok := constraintMessage(err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.clearOTP(r.Context(), key); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更改邮箱成功", nil)
}
