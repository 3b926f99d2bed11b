package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/config"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	validate, trans, err := newValidator()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.RateLimit.OptimizationPerMinute = 1
	cfg.RateLimit.OptimizationBurst = 2

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,
		limiter:    newUserLimiter(cfg.RateLimit.OptimizationPerMinute, cfg.RateLimit.OptimizationBurst),
		Mux:        chi.NewRouter(),
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func signToken(t *testing.T, secret string, userID int64, role domain.Role, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			Subject:   strconv.FormatInt(userID, 10),
		},
	})
	ss, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return ss
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHandler(t)

	var gotSub, gotRole string
	protected := h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = r.Context().Value(SubCtxKey).(string)
		gotRole = r.Context().Value(RoleCtxKey).(string)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("没有 cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/my-info", nil))
		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "用户未登录", resp.Message)
	})

	t.Run("签名错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: signToken(t, "other", 1, domain.RoleAdmin, time.Hour)})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, "无效的令牌", decodeResponse(t, rec).Message)
	})

	t.Run("令牌过期", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: signToken(t, "test-secret", 1, domain.RoleAdmin, -time.Hour)})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, "无效的令牌", decodeResponse(t, rec).Message)
	})

	t.Run("有效令牌", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/my-info", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: signToken(t, "test-secret", 7, domain.RolePlanner, time.Hour)})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "7", gotSub)
		assert.Equal(t, string(domain.RolePlanner), gotRole)
	})
}

func TestRequiredRole(t *testing.T) {
	h := newTestHandler(t)
	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req.WithContext(context.WithValue(req.Context(), RoleCtxKey, string(domain.RolePlanner))))
	assert.Equal(t, "权限不足", decodeResponse(t, rec).Message)

	rec = httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req.WithContext(context.WithValue(req.Context(), RoleCtxKey, string(domain.RoleAdmin))))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoadByID(t *testing.T) {
	h := newTestHandler(t)

	lots := map[int64]*domain.ParkingLot{3: {ID: 3, Name: "新街口停车场"}}
	get := func(id int64) (*domain.ParkingLot, error) {
		if lot, ok := lots[id]; ok {
			return lot, nil
		}
		return nil, sql.ErrNoRows
	}

	r := chi.NewRouter()
	r.With(loadByID(h, ParkingLotCtx, "停车场", get)).Get("/parking-lots/{id}", func(w http.ResponseWriter, r *http.Request) {
		lot := r.Context().Value(ParkingLotCtx).(*domain.ParkingLot)
		h.successResponse(w, r, "ok", lot)
	})

	cases := []struct {
		path    string
		success bool
		message string
	}{
		{"/parking-lots/3", true, "ok"},
		{"/parking-lots/4", false, "停车场不存在"},
		{"/parking-lots/abc", false, "停车场ID无效"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		resp := decodeResponse(t, rec)
		assert.Equal(t, c.success, resp.Success, c.path)
		assert.Equal(t, c.message, resp.Message, c.path)
	}
}

func TestLoadByIDInternalError(t *testing.T) {
	h := newTestHandler(t)
	get := func(id int64) (*domain.Site, error) { return nil, errors.New("连接断开") }

	r := chi.NewRouter()
	r.With(loadByID(h, SiteCtx, "站点", get)).Get("/sites/{id}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sites/1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "服务器内部错误", decodeResponse(t, rec).Message)
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t)
	limited := h.rateLimit(okHandler)

	send := func(sub string) int {
		req := httptest.NewRequest(http.MethodPost, "/optimization-runs", nil)
		req = req.WithContext(context.WithValue(req.Context(), SubCtxKey, sub))
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("1"))
	assert.Equal(t, http.StatusNoContent, send("1"))
	assert.Equal(t, http.StatusTooManyRequests, send("1"))

	// 不同用户之间互不影响
	assert.Equal(t, http.StatusNoContent, send("2"))
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	var req struct {
		Username string `json:"username" validate:"required"`
	}
	err := h.validate.Struct(req)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), err)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Username")
	assert.Contains(t, resp.Message, "必填")
}

func TestBadRequestWithConfigurationError(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/optimization-runs", nil),
		&domain.ConfigurationError{Field: "selectCount", Reason: "至少需要选择一个候选设施"})
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "selectCount")
}

func TestRecoverer(t *testing.T) {
	h := newTestHandler(t)
	panicking := h.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	cookie := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, tokenCookieName+"="))
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestOptimizationParametersKeepDefaults(t *testing.T) {
	h := newTestHandler(t)
	h.config.Optimizer.PopulationSize = 100
	h.config.Optimizer.SelectCount = 20
	h.config.Optimizer.MutationScale = 0.1
	h.config.Optimizer.MaxGenerations = 200
	h.config.Optimizer.CoverRadius = 5

	params := h.config.OptimizationDefaults()
	req := httptest.NewRequest(http.MethodPost, "/optimization-runs", strings.NewReader(`{"selectCount": 5, "seed": 42}`))
	require.NoError(t, h.readJSON(req, &params))
	require.NoError(t, h.validate.Struct(params))

	assert.Equal(t, 5, params.SelectCount)
	assert.Equal(t, uint64(42), params.Seed)
	assert.Equal(t, 100, params.PopulationSize)
	assert.Equal(t, 5.0, params.CoverRadius)

	// 显式传入 0 不会被默认值覆盖，而是被校验拒绝
	params = h.config.OptimizationDefaults()
	req = httptest.NewRequest(http.MethodPost, "/optimization-runs", strings.NewReader(`{"selectCount": 0}`))
	require.NoError(t, h.readJSON(req, &params))
	assert.Error(t, h.validate.Struct(params))
}

func TestDecodeAndValidate(t *testing.T) {
	h := newTestHandler(t)

	type loginRequest struct {
		Username string `json:"username" validate:"required"`
	}

	cases := []struct {
		name    string
		body    string
		ok      bool
		message string
	}{
		{"正常请求", `{"username": "admin"}`, true, ""},
		{"空请求体", ``, false, "请求体不能为空"},
		{"多个对象", `{"username": "a"} {"username": "b"}`, false, "请求体只能包含一个 JSON 对象"},
		{"请求体过大", `{"username": "` + strings.Repeat("a", maxBodyBytes) + `"}`, false, "请求体过大"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var req loginRequest
			rec := httptest.NewRecorder()
			ok := h.decodeAndValidate(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(c.body)), &req)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, "admin", req.Username)
				return
			}
			assert.Equal(t, c.message, decodeResponse(t, rec).Message)
		})
	}
}

func TestIssueToken(t *testing.T) {
	h := newTestHandler(t)
	h.config.JWT.Expiration = 3600

	ss, expiration, err := h.issueToken(&domain.User{ID: 42, Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiration, time.Minute)

	claims := &AuthClaims{}
	_, err = jwt.ParseWithClaims(ss, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
}
