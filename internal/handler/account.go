package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken 签发登录令牌，JWT.Expiration 以秒为单位
func (h *Handler) issueToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	return ss, expiration, err
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, value string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
	}
	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}
	http.SetCookie(w, cookie)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func resetPasswordOTPKey(username string) string {
	return fmt.Sprintf("otp_%s_reset_password", username)
}

func changeEmailOTPKey(username, email string) string {
	return fmt.Sprintf("otp_%s_change_email_to_%s", username, email)
}

func (h *Handler) redisContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(h.config.Redis.OperationTimeout)*time.Second)
}

// sendOTP 生成验证码写入 redis，再通过邮件队列发给用户
func (h *Handler) sendOTP(ctx context.Context, key, mailType, to string, data func(otp string, minutes int) any) error {
	otp := utils.GenerateRandomOTP()

	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	if err := h.redisClient.Set(ctx, key, otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		return err
	}

	return h.publishMail(domain.MailMessage{
		Type: mailType,
		To:   to,
		Data: data(otp, h.config.OTP.Expiration/60),
	})
}

// verifyOTP 验证码不存在或过期时返回 false 而不是错误
func (h *Handler) verifyOTP(ctx context.Context, key, given string) (bool, error) {
	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return otp == given, nil
}

// clearOTP 验证码只能使用一次
func (h *Handler) clearOTP(ctx context.Context, key string) error {
	ctx, cancel := h.redisContext(ctx)
	defer cancel()
	return h.redisClient.Del(ctx, key).Err()
}
