package handle

import (
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"wildcats-food-express/internal/order/app/core"
)

// Cors answers preflight requests and echoes allowed origins so the browser
// can send the access token cookie.
func Cors(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxConcurrent rejects requests beyond n in flight with 503.
func MaxConcurrent(n int) func(http.Handler) http.Handler {
	sem := semaphore.NewWeighted(int64(n))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sem.TryAcquire(1) {
				jsonError(w, http.StatusServiceUnavailable, core.ErrMaxConcurrentExceeded)
				return
			}
			defer sem.Release(1)
			next.ServeHTTP(w, r)
		})
	}
}

const limiterIdle = 10 * time.Minute

// RateLimiter gives every session (or remote address, before authentication)
// its own token bucket.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil when perSecond is not positive; a nil limiter lets everything through.
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = perSecond
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(visitorKey(r)) {
			w.Header().Set("Retry-After", "1")
			jsonError(w, http.StatusTooManyRequests, core.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastGC) > limiterIdle {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > limiterIdle {
				delete(rl.visitors, k)
			}
		}
		rl.lastGC = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func visitorKey(r *http.Request) string {
	if sess, ok := core.SessionFrom(r.Context()); ok {
		return "user:" + sess.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
