package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/http/response"
	"github.com/campusconnect/campus-connect-api/internal/observability"
)

// Decision is the outcome of one limiter hit. Reset is the time left in the
// current window.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

func decide(count int64, limit int, reset time.Duration) Decision {
	return Decision{
		Allowed:   count <= int64(limit),
		Remaining: int(max(int64(limit)-count, 0)),
		Reset:     max(reset, 0),
	}
}

type fixedWindow struct {
	count       int
	windowStart time.Time
}

// LocalFixedWindowLimiter keeps windows in process memory. It serves single
// instance deployments and tests.
type LocalFixedWindowLimiter struct {
	mu      sync.Mutex
	store   map[string]*fixedWindow
	cleanup time.Time
	now     func() time.Time
}

func NewLocalFixedWindowLimiter() *LocalFixedWindowLimiter {
	return &LocalFixedWindowLimiter{
		store: make(map[string]*fixedWindow),
		now:   time.Now,
	}
}

func (l *LocalFixedWindowLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.cleanup) {
		for k, v := range l.store {
			if now.Sub(v.windowStart) > 2*window {
				delete(l.store, k)
			}
		}
		l.cleanup = now.Add(window)
	}

	entry, ok := l.store[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		entry = &fixedWindow{windowStart: now}
		l.store[key] = entry
	}
	// Denied hits are not counted.
	if entry.count < limit {
		entry.count++
		return decide(int64(entry.count), limit, window-now.Sub(entry.windowStart)), nil
	}
	return decide(int64(limit)+1, limit, window-now.Sub(entry.windowStart)), nil
}

// RateLimiter applies one fixed-window budget per client IP to every request
// passing through Middleware.
type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	mode    FailureMode
	scope   string
	backend string
}

func NewRateLimiter(scope string, limit int, window time.Duration) *RateLimiter {
	rl := NewDistributedRateLimiter(NewLocalFixedWindowLimiter(), scope, limit, window, FailClosed)
	rl.backend = "local"
	return rl
}

func NewDistributedRateLimiter(limiter Limiter, scope string, limit int, window time.Duration, mode FailureMode) *RateLimiter {
	if scope == "" {
		scope = "api"
	}
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		window:  window,
		mode:    mode,
		scope:   scope,
		backend: "distributed",
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			decision, err := rl.limiter.Allow(ctx, rl.scope+":"+clientIPKey(r), rl.limit, rl.window)
			if err != nil {
				if rl.mode == FailOpen {
					observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error_allow", rl.backend, "ip")
					slog.WarnContext(ctx, "rate limiter backend unavailable, allowing request",
						"scope", rl.scope,
						"mode", string(rl.mode),
						"error", err.Error(),
					)
					next.ServeHTTP(w, r)
					return
				}
				observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error_deny", rl.backend, "ip")
				observability.RecordRateLimitRetryAfter(ctx, rl.scope, "backend_error", rl.window)
				rl.reject(w, r, rl.window)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				observability.RecordRateLimitDecision(ctx, rl.scope, "deny", rl.backend, "ip")
				observability.RecordRateLimitRetryAfter(ctx, rl.scope, "window", decision.Reset)
				rl.reject(w, r, decision.Reset)
				return
			}
			observability.RecordRateLimitDecision(ctx, rl.scope, "allow", rl.backend, "ip")
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	w.Header().Set("Retry-After", RetryAfterHeader(retryAfter))
	response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	return r.RemoteAddr
}

// RetryAfterHeader renders d as whole seconds, never below one.
func RetryAfterHeader(d time.Duration) string {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
