package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// 请求体上限，导入数据走 seed 命令而不是 HTTP 接口
const maxBodyBytes = 1 << 20

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("请求体只能包含一个 JSON 对象")
	}
	return nil
}

// decodeAndValidate 解析并校验请求体，失败时已经写好了响应
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := h.readJSON(r, v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.errorResponse(w, r, "请求体过大")
		case errors.Is(err, io.EOF):
			h.errorResponse(w, r, "请求体不能为空")
		default:
			h.badRequest(w, r, err)
		}
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.badRequest(w, r, err)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{Success: true, Message: msg, Data: data})
}

// errorResponse 业务错误仍然返回 200，由 success 字段区分
func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{Success: false, Message: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
		return
	}
	h.errorResponse(w, r, err.Error())
}

func (h *Handler) tooManyRequests(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusTooManyRequests, Response{Success: false, Message: msg})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{Success: false, Message: "服务器内部错误"})
}
