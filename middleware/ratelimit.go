// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles write requests per client. Clients are keyed by a
// salted hash of their IP so raw addresses are never held in memory.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	salt     string
	clientIP func(*http.Request) string
	now      func() time.Time
}

// NewRateLimiter allows rps requests per second per client with the given
// burst.
func NewRateLimiter(rps float64, burst int, salt string) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		salt:     salt,
		clientIP: RemoteIP,
		now:      time.Now,
	}
}

// TrustProxy keys clients by X-Forwarded-For / X-Real-IP when trusted, and
// by the peer address otherwise. It returns rl.
func (rl *RateLimiter) TrustProxy(trusted bool) *RateLimiter {
	if trusted {
		rl.clientIP = GetClientIP
	} else {
		rl.clientIP = RemoteIP
	}
	return rl
}

// Run evicts idle clients every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-visitorTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Allow reports whether the request may proceed.
func (rl *RateLimiter) Allow(r *http.Request) bool {
	return rl.limiter(auth.HashIP(rl.clientIP(r), rl.salt)).Allow()
}

// Limit wraps a handler, answering 429 once a client exceeds its budget.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.limit)))
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		next(w, r)
	}
}

func retryAfterSeconds(l rate.Limit) int {
	if l <= 0 {
		return 60
	}
	return max(1, int(1/float64(l)+0.5))
}
