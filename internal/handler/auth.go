package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "用户名不存在或密码错误")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.errorResponse(w, r, "用户名不存在或密码错误")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if !user.IsActive {
		h.errorResponse(w, r, "账号已停用")
		return
	}

	token, expiration, err := h.issueToken(user)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.setTokenCookie(w, token, expiration)

	h.successResponse(w, r, "登录成功", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", time.Now().Add(-time.Hour))
	h.successResponse(w, r, "登出成功", nil)
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	const sent = "重置密码所需验证码已通过邮件发送"

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 不暴露用户名是否存在
			h.successResponse(w, r, sent, nil)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	err = h.sendOTP(r.Context(), resetPasswordOTPKey(user.Username), "reset_password", user.Email, func(otp string, minutes int) any {
		return domain.ResetPasswordMailData{FullName: user.FullName, OTP: otp, Expiration: minutes}
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, sent, nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	key := resetPasswordOTPKey(req.Username)
	ok, err := h.verifyOTP(r.Context(), key, req.OTP)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.errorResponse(w, r, "验证码错误")
		return
	}

	user, err := h.repository.GetUserByUsername(req.Username)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if user.PasswordHash, err = hashPassword(req.Password); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := h.repository.UpdateUser(user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "请重试")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.clearOTP(r.Context(), key); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "重置密码成功", nil)
}
