package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"modernmen-backend/utils"
)

// LimitStore decides whether one more request for key is allowed.
type LimitStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryStore is a per-key token bucket refilled at limit/window.
type MemoryStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idle:     window,
	}
}

func (m *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.limiters[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow(), nil
}

// Cleanup drops limiters idle for longer than one window.
func (m *MemoryStore) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-m.idle)
	for k, e := range m.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(m.limiters, k)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (m *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}

// RedisStore is a fixed window counter shared by every instance.
type RedisStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisStore(redisURL string, limit int, window time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts), limit: limit, window: window, prefix: "ratelimit:"}, nil
}

func (r *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(r.window)
	k := r.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(r.limit), nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// RateLimit keys on the session user when present, otherwise the client IP.
// Store errors fail open.
func RateLimit(store LimitStore, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds() / float64(limit))))
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if s, ok := utils.SessionFrom(c); ok {
			key = "user:" + s.UserID.String()
		}

		allowed, err := store.Allow(c.Request.Context(), key)
		if err != nil {
			utils.LoggerFor(c).WithError(err).Warn("rate limit store unavailable")
			c.Next()
			return
		}
		if !allowed {
			utils.LoggerFor(c).WithFields(logrus.Fields{
				"key":  key,
				"path": c.Request.URL.Path,
			}).Warn("rate limit exceeded")
			c.Header("Retry-After", retryAfter)
			utils.RespondWithCode(c, utils.CodeRateLimitExceeded, "Too many requests, please try again later", gin.H{
				"limit":  limit,
				"window": window.String(),
			})
			return
		}
		c.Next()
	}
}
