package handler

import (
	"sync"

	"golang.org/x/time/rate"
)

// userLimiter 为每个用户维护一个令牌桶
type userLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newUserLimiter(perMinute float64, burst int) *userLimiter {
	return &userLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
	}
}

func (l *userLimiter) allow(user string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[user]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[user] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
