package http

import (
	"time"

	"golang.org/x/time/rate"
)

type IPRateLimiter = ipRateLimiter

func NewIPRateLimiter(r rate.Limit, b int, idleTTL time.Duration, now func() time.Time) *IPRateLimiter {
	return newIPRateLimiter(r, b, idleTTL, now)
}

func (l *ipRateLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *ipRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
