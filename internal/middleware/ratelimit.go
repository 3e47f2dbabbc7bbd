package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// counter counts hits for a key inside a fixed window.
type counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

type visitor struct {
	count    int64
	lastSeen time.Time
}

type memoryCounter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

func newMemoryCounter(window time.Duration) *memoryCounter {
	c := &memoryCounter{
		visitors: make(map[string]*visitor),
		window:   window,
		done:     make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.done:
				return
			}
		}
	}()

	return c
}

func (c *memoryCounter) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ip, v := range c.visitors {
		if time.Since(v.lastSeen) > c.window {
			delete(c.visitors, ip)
		}
	}
}

func (c *memoryCounter) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *memoryCounter) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, exists := c.visitors[key]
	if !exists || time.Since(v.lastSeen) > c.window {
		c.visitors[key] = &visitor{count: 1, lastSeen: time.Now()}
		return 1, nil
	}

	v.count++
	v.lastSeen = time.Now()
	return v.count, nil
}

// redisCounter shares counters between server replicas.
type redisCounter struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func (c *redisCounter) Incr(ctx context.Context, key string) (int64, error) {
	k := fmt.Sprintf("%s:%s", c.prefix, key)

	n, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, k, c.window).Err(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

type RateLimiter struct {
	counter counter
	limit   int64
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{counter: newMemoryCounter(window), limit: int64(limit)}
}

// NewRedisRateLimiter keeps counters under "ratelimit:<name>:<ip>" in Redis.
func NewRedisRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counter: &redisCounter{client: client, prefix: "ratelimit:" + name, window: window},
		limit:   int64(limit),
	}
}

// Close stops background cleanup. Redis-backed limiters hold nothing to stop.
func (rl *RateLimiter) Close() {
	if c, ok := rl.counter.(interface{ Close() }); ok {
		c.Close()
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := rl.counter.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	return count <= rl.limit, nil
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		ok, err := rl.Allow(r.Context(), ip)
		if err != nil {
			// Counter backend unavailable: let the request through.
			log.Printf("rate limiter error for %s: %v", ip, err)
			next.ServeHTTP(w, r)
			return
		}

		if !ok {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP returns RemoteAddr without its port. Behind a proxy chi's RealIP
// has already replaced RemoteAddr with the forwarded address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
