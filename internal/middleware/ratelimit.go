package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/revalidation-api/internal/config"
)

// takeToken refills the bucket stored at KEYS[1] for every whole interval
// elapsed since the last refill and then tries to take one token.
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed (0|1), tokens left, retry_after_ms}.
var takeToken = redis.NewScript(`
local now, cap, step, every, ttl =
	tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local st = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms')
local tokens, last = tonumber(st[1]), tonumber(st[2])
if not tokens or not last then
	tokens, last = cap, now
end
local n = math.floor(math.max(0, now - last) / every)
if n > 0 then
	tokens = math.min(cap, tokens + n * step)
	last = last + n * every
end
local ok, wait = 0, 0
if tokens > 0 then
	ok, tokens = 1, tokens - 1
else
	wait = math.max(0, every - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

func take(c echo.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (bucketResult, error) {
	vals, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketResult{}, err
	}
	if len(vals) != 3 {
		return bucketResult{}, redis.Nil
	}
	return bucketResult{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		retry:     time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits /v1 requests per rate key with a Redis token
// bucket.  Without Redis, or when disabled, it passes every request
// through; Redis errors also let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := take(c, rdb, cfg, key)
			if err != nil {
				zerolog.Ctx(c.Request().Context()).Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(res.retry.Seconds()))))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
}

// rateKeyParts names the components a key strategy may combine.
var rateKeyParts = map[string]func(echo.Context) string{
	"ip": func(c echo.Context) string {
		if ip := c.RealIP(); ip != "" {
			return ip
		}
		return "unknown"
	},
	"user":  userKey,
	"route": func(c echo.Context) string { return c.Request().Method + " " + c.Path() },
}

// buildRateKey joins the prefix with the parts named by the strategy,
// e.g. "ip_user" gives "rl:ip:<addr>:user:<id>".  Unknown strategies use
// all three parts.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	names := strings.Split(strings.ToLower(cfg.KeyStrategy), "_")
	for _, n := range names {
		if _, ok := rateKeyParts[n]; !ok {
			names = []string{"ip", "user", "route"}
			break
		}
	}
	parts := []string{cfg.Prefix}
	for _, n := range names {
		parts = append(parts, n, rateKeyParts[n](c))
	}
	return strings.Join(parts, ":")
}
