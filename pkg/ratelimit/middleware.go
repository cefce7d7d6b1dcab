package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mqsieve/pkg/metrics"
)

type Config struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

func DefaultConfig() Config {
	return Config{
		RPS:             10.0,
		Burst:           20,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// Registry holds one token bucket per client IP and prunes buckets for
// clients that have gone quiet.
type Registry struct {
	cfg     Config
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:     cfg,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow reports whether the client may proceed and returns the remaining
// burst for the response headers.
func (r *Registry) Allow(clientIP string) (bool, int) {
	r.mu.Lock()
	cl, ok := r.clients[clientIP]
	if !ok {
		cl = &clientLimiter{
			bucket: rate.NewLimiter(rate.Limit(r.cfg.RPS), r.cfg.Burst),
		}
		r.clients[clientIP] = cl
	}
	cl.lastSeen = time.Now()
	r.mu.Unlock()

	if !cl.bucket.Allow() {
		return false, 0
	}

	remaining := cl.bucket.Burst() - int(cl.bucket.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining
}

func (r *Registry) prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ip, cl := range r.clients {
		if now.Sub(cl.lastSeen) > r.cfg.MaxAge {
			delete(r.clients, ip)
		}
	}
}

func (r *Registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Middleware limits publish requests per client IP.
func Middleware(cfg Config) gin.HandlerFunc {
	registry := NewRegistry(cfg)

	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for t := range ticker.C {
			registry.prune(t)
		}
	}()

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.RemoteIP()
		}

		allowed, remaining := registry.Allow(clientIP)

		c.Header("X-RateLimit-Limit", strconv.Itoa(int(cfg.RPS)))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			metrics.RateLimitRequestsTotal.WithLabelValues("limited").Inc()
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"error_code": "RATE_LIMIT_EXCEEDED",
			})
			c.Abort()
			return
		}

		metrics.RateLimitRequestsTotal.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
