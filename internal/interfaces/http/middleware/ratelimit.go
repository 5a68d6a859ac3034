package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// RateLimiter decides whether the client behind key may proceed.
type RateLimiter interface {
	Allow(key string) (allowed bool, retryAfter time.Duration)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one rate.Limiter per key. Clients idle for longer
// than a full refill are dropped lazily.
type TokenBucketLimiter struct {
	limit   rate.Limit
	burst   int
	now     func() time.Time
	mu      sync.Mutex
	clients map[string]*clientLimiter
	calls   int
}

// NewTokenBucketLimiter allows perSecond requests per second with bursts of
// burst requests.
func NewTokenBucketLimiter(perSecond float64, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow takes a token for key. A refused reservation is cancelled so the
// rejected request does not eat into the client's budget.
func (l *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%1024 == 0 {
		l.sweep(now)
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	res := c.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *TokenBucketLimiter) sweep(now time.Time) {
	if l.limit <= 0 {
		return
	}
	full := time.Duration(float64(l.burst) / float64(l.limit) * float64(time.Second))
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > full {
			delete(l.clients, key)
		}
	}
}

// BucketCount returns the number of tracked clients.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ClientIP keys requests by remote host. chi's RealIP middleware has
// already applied X-Forwarded-For / X-Real-IP when the router uses it.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limiter's budget with 429 and a
// Retry-After header.
func RateLimit(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, wait := limiter.Allow(ClientIP(r))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			resp := common.NewErrorResponse(string(errors.CodeRateLimited), "muitas requisições; tente novamente em instantes")
			resp.RequestID = GetRequestID(r.Context())
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(resp)
		})
	}
}

//Personal.AI order the ending
