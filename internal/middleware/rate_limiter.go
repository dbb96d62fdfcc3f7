package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RateLimiter implements a simple token bucket rate limiter keyed by user
type RateLimiter struct {
	mu           sync.Mutex
	tokens       map[string]int
	lastRefill   map[string]time.Time
	maxTokens    int
	refillRate   int           // tokens per refill
	refillPeriod time.Duration // how often to refill
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxTokens, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:       make(map[string]int),
		lastRefill:   make(map[string]time.Time),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
	}
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	if _, exists := rl.tokens[key]; !exists {
		rl.tokens[key] = rl.maxTokens
		rl.lastRefill[key] = now
	}

	elapsed := now.Sub(rl.lastRefill[key])
	refills := int(elapsed / rl.refillPeriod)
	if refills > 0 {
		rl.tokens[key] += refills * rl.refillRate
		if rl.tokens[key] > rl.maxTokens {
			rl.tokens[key] = rl.maxTokens
		}
		rl.lastRefill[key] = now
	}

	if rl.tokens[key] > 0 {
		rl.tokens[key]--
		return true
	}

	return false
}

// Remaining returns the remaining tokens for a key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens[key]
}

// RateLimitMiddleware creates a rate limiting middleware. The key is the
// authenticated user id when present, the client IP otherwise.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			if id, ok := userID.(uuid.UUID); ok {
				key = id.String()
			} else if id, ok := userID.(string); ok {
				key = id
			}
		}

		if !rl.Allow(key) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxTokens))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": APIError{
					Code:       ErrCodeRateLimited,
					Message:    "Too many requests, please try again later",
					RetryAfter: int(rl.refillPeriod.Milliseconds()),
				},
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxTokens))

		c.Next()
	}
}

// DefaultRateLimiter allows 100 requests per minute per user
var DefaultRateLimiter = NewRateLimiter(100, 10, time.Minute)

// StrictRateLimiter allows 20 requests per minute per user, for routes
// that hit the upstream data source.
var StrictRateLimiter = NewRateLimiter(20, 2, time.Minute)
