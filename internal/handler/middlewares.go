package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/metrics"
)

const tokenCookieName = "__charging_siting_token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		status := strconv.Itoa(rw.StatusCode)
		metrics.HTTPRequests.WithLabelValues(r.Method, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, status).Observe(duration.Seconds())

		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 从 cookie 中获取 token
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "用户未登录")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// 验证 token
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		// 将 claims 中的 role 和 sub 附在 context 中
		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUserID 从 auth 中间件写入的 sub 解析出当前用户的 ID
func currentUserID(r *http.Request) (int64, error) {
	sub, _ := r.Context().Value(SubCtxKey).(string)
	return strconv.ParseInt(sub, 10, 64)
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := currentUserID(r)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		myInfo, err := h.repository.GetUserByID(sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "个人信息不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleCtx, _ := r.Context().Value(RoleCtxKey).(string)
			if !slices.Contains(roles, domain.Role(roleCtx)) {
				h.errorResponse(w, r, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loadByID 根据路径参数 id 读取资源并放入 context，资源不存在时直接返回错误信息
func loadByID[T any](h *Handler, key ContextKey, resource string, get func(int64) (T, error)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				h.errorResponse(w, r, resource+"ID无效")
				return
			}

			v, err := get(id)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, resource+"不存在")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), key, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return loadByID(h, UserInfoCtx, "用户", h.repository.GetUserByID)(next)
}

func (h *Handler) chargingStation(next http.Handler) http.Handler {
	return loadByID(h, ChargingStationCtx, "充电站", h.repository.GetChargingStationByID)(next)
}

func (h *Handler) parkingLot(next http.Handler) http.Handler {
	return loadByID(h, ParkingLotCtx, "停车场", h.repository.GetParkingLotByID)(next)
}

func (h *Handler) site(next http.Handler) http.Handler {
	return loadByID(h, SiteCtx, "站点", h.repository.GetSiteByID)(next)
}

func (h *Handler) recommendation(next http.Handler) http.Handler {
	return loadByID(h, RecommendationCtx, "推荐点", h.repository.GetRecommendationByID)(next)
}

func (h *Handler) optimizationRun(next http.Handler) http.Handler {
	return loadByID(h, OptimizationRunCtx, "优化任务", h.repository.GetOptimizationRunByID)(next)
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "禁止操作初始管理员")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit 限制每个用户提交优化任务的频率
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, _ := r.Context().Value(SubCtxKey).(string)
		if !h.limiter.allow(sub) {
			h.tooManyRequests(w, r, "提交过于频繁，请稍后再试")
			return
		}
		next.ServeHTTP(w, r)
	})
}
