package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// client is the fixed-window counter of one client ip.
type client struct {
	windowStart time.Time
	count       int
}

type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
}

// RateLimiter allows up to limit requests per window for each client ip and
// answers 429 with an ErrorResponse beyond that. A non-positive limit
// disables limiting.
//
// Usage:
//
//	router.Use(middleware.RateLimiter(60, time.Minute))
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := &rateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	return rl.handle
}

func (rl *rateLimiter) handle(c *gin.Context) {
	if rl.limit <= 0 {
		c.Next()
		return
	}

	ok, wait := rl.allow(c.ClientIP())
	if !ok {
		c.Header("Retry-After", retryAfter(wait))
		AbortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
		return
	}

	c.Next()
}

// allow counts a request from ip. When the request is over the limit it
// also returns how long until the client's window resets.
func (rl *rateLimiter) allow(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[ip]
	if !ok || now.Sub(cl.windowStart) >= rl.window {
		rl.clients[ip] = &client{windowStart: now, count: 1}
		rl.evict(now)
		return true, 0
	}
	cl.count++
	if cl.count <= rl.limit {
		return true, 0
	}
	return false, cl.windowStart.Add(rl.window).Sub(now)
}

// retryAfter renders d as whole seconds, rounded up, never below 1.
func retryAfter(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// evict drops clients whose window has expired. Called on window rollover
// only, so the map does not grow with one-off clients.
func (rl *rateLimiter) evict(now time.Time) {
	for ip, cl := range rl.clients {
		if now.Sub(cl.windowStart) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}
