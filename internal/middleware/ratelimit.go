package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// KEYS[1] bucket key
// ARGV now_ms, capacity, interval_ms, ttl_seconds
// returns {allowed, remaining, retry_after_ms}
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 then
	local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + intervals * interval_ms
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

type decision struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// RateLimiter is a token bucket keyed by user (or client IP when
// anonymous) and route. Buckets live in Redis when a client is given so
// all replicas share them; otherwise, or when Redis errors, a process
// local limiter is used.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	rdb    *redis.Client
	logger *slog.Logger

	mu    sync.Mutex
	local map[string]*localBucket
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:    cfg,
		rdb:    rdb,
		logger: logger,
		local:  make(map[string]*localBucket),
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	who := "ip:" + c.ClientIP()
	if id, ok := UserID(c); ok {
		who = "user:" + id.String()
	}
	return strings.Join([]string{rl.cfg.Prefix, c.Request.Method + " " + c.FullPath(), who}, ":")
}

func (rl *RateLimiter) ttl() time.Duration {
	d := time.Duration(rl.cfg.Capacity) * rl.cfg.RefillEvery * 2
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

func (rl *RateLimiter) takeRedis(ctx context.Context, key string, now time.Time) (decision, error) {
	vals, err := tokenBucketScript.Run(ctx, rl.rdb, []string{key},
		now.UnixMilli(),
		rl.cfg.Capacity,
		rl.cfg.RefillEvery.Milliseconds(),
		int64(rl.ttl()/time.Second),
	).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(vals) != 3 {
		return decision{}, fmt.Errorf("unexpected script result %v", vals)
	}
	return decision{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		retry:     time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (rl *RateLimiter) takeLocal(key string, now time.Time) decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.local[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(rl.cfg.RefillEvery), rl.cfg.Capacity)}
		rl.local[key] = b
	}
	b.lastSeen = now
	rl.sweepLocked(now)

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return decision{retry: delay}
	}
	return decision{allowed: true, remaining: int64(math.Floor(b.limiter.TokensAt(now)))}
}

// sweepLocked drops buckets idle long enough to have refilled.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if len(rl.local) < 1024 {
		return
	}
	for k, b := range rl.local {
		if now.Sub(b.lastSeen) > rl.ttl() {
			delete(rl.local, k)
		}
	}
}

func (rl *RateLimiter) take(ctx context.Context, key string, now time.Time) decision {
	if rl.rdb != nil {
		d, err := rl.takeRedis(ctx, key, now)
		if err == nil {
			return d
		}
		rl.logger.Warn("rate limit redis error, using local bucket", "key", key, "error", err)
	}
	return rl.takeLocal(key, now)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if !rl.cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		d := rl.take(c.Request.Context(), rl.key(c), time.Now())

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
		if !d.allowed {
			secs := int(math.Ceil(d.retry.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
			return
		}
		c.Next()
	}
}
