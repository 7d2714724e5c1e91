package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"musichub/internal/logging"
	"musichub/internal/metrics"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether key may perform one more write.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter is a fixed-window counter shared by every instance of the API.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, perMinute int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  int64(perMinute),
		window: time.Minute,
		now:    time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().Unix() / int64(l.window/time.Second)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", redisKey, err)
	}
	return incr.Val() <= l.limit, nil
}

// LocalRateLimiter keeps a token bucket per key in process memory. Used when
// Redis is not configured. The least recently seen keys are evicted once
// maxKeys buckets exist.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	every    rate.Limit
	burst    int
}

func NewLocalRateLimiter(perMinute, maxKeys int) (*LocalRateLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("rate limiter cache: %w", err)
	}
	return &LocalRateLimiter{
		limiters: cache,
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}, nil
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.every, l.burst)
		l.limiters.Add(key, limiter)
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// Len reports how many keys currently hold a bucket.
func (l *LocalRateLimiter) Len() int {
	return l.limiters.Len()
}

// anonymousKey is the one bucket every unauthenticated write draws from.
const anonymousKey = "anonymous"

// RateLimit throttles writes per caller. Anonymous writes share a single
// bucket. Reads pass through. A limiter error lets the request through.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := anonymousKey
		if caller := CallerFromContext(c); caller != nil {
			key = "user:" + caller.ID
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logging.Ctx(c.Request.Context()).Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
