// Package ratelimit throttles requests per client key, in Redis when it is
// configured and in process memory otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/respond"
)

// Limiter decides whether one more request for key fits in limit per window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

const keyPrefix = "talenthub:ratelimit:"

// redisTimeout bounds each Redis round trip.
const redisTimeout = 250 * time.Millisecond

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window counter shared by every instance.
// It fails open when Redis is unreachable.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
}

// NewRedisLimiter creates a RedisLimiter on client.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, script: redis.NewScript(fixedWindowScript)}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{keyPrefix + key}, ttl, limit).Int64()
	if err != nil {
		log.Printf("rate limiter: redis unavailable, allowing %s: %v", key, err)
		return true
	}
	return allowed == 1
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
	ttl      time.Duration
}

// LocalLimiter keeps a token bucket per key in memory. Buckets idle for longer
// than their window are swept.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalLimiter creates an empty LocalLimiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > b.ttl {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	// a key may be limited with different budgets on different routes
	id := fmt.Sprintf("%s|%d|%s", key, limit, window)
	b := l.buckets[id]
	if b == nil {
		b = &bucket{lim: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit), ttl: window}
		l.buckets[id] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// Middleware rejects requests over limit per window with 429. Requests whose
// key is empty are not limited.
func Middleware(limiter Limiter, keyFn func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key != "" && !limiter.Allow(r.Context(), key, limit, window) {
				respond.Error(w, r, apperror.NewRateLimitError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host of RemoteAddr. Forwarding headers are not read
// here. Behind a proxy, chi's middleware.RealIP must run first, and the proxy
// must overwrite X-Real-IP/X-Forwarded-For. Otherwise clients choose their own key.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ByRoute prefixes keyFn's key with name, giving each endpoint its own budget.
func ByRoute(name string, keyFn func(*http.Request) string) func(*http.Request) string {
	return func(r *http.Request) string {
		k := keyFn(r)
		if k == "" {
			return ""
		}
		return name + ":" + k
	}
}
