package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	pkgerrors "teagate/pkg/errors"
	"teagate/pkg/metrics"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimitConfig struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

// DefaultConfig allows 60 requests per minute per client with a burst of 10.
func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RPS:             1.0,
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

// Store holds one token bucket per client key.
type Store struct {
	config   RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	now      func() time.Time
}

func NewStore(config RateLimitConfig) *Store {
	defaults := DefaultConfig()
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}
	return &Store{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// Allow takes one token for key and reports whether the request may proceed
// along with the whole tokens left.
func (s *Store) Allow(key string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(s.config.RPS), s.config.Burst)}
		s.limiters[key] = entry
	}
	now := s.now()
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// Cleanup drops clients not seen within MaxAge.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	cutoff := s.now().Add(-s.config.MaxAge)
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every CleanupInterval until ctx is done.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// ClientKey prefers the first X-Forwarded-For hop so clients behind a proxy
// get separate buckets.
func ClientKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.RemoteIP()
}

func RateLimitMiddleware(store *Store) gin.HandlerFunc {
	limitPerMinute := strconv.Itoa(int(store.config.RPS * 60))

	return func(c *gin.Context) {
		allowed, remaining := store.Allow(ClientKey(c))
		c.Header("X-RateLimit-Limit", limitPerMinute)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			metrics.RateLimitRequestsTotal.WithLabelValues("limited").Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, pkgerrors.ToErrorResponse(pkgerrors.ErrRateLimited))
			return
		}

		metrics.RateLimitRequestsTotal.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
