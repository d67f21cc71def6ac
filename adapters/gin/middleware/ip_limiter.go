package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultLimiterTTL is how long an idle client's bucket is kept.
const DefaultLimiterTTL = 10 * time.Minute

// clientLimiter holds the limiter and the last seen time for a client
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP. Buckets of clients
// idle for longer than ttl are dropped by a background sweep; call
// StopCleanup on shutdown.
type IPRateLimiter struct {
	clients  map[string]*clientLimiter
	mu       *sync.Mutex
	rate     rate.Limit    // tokens per second
	burst    int           // bucket size
	ttl      time.Duration // Time-to-live for inactive client entries
	logger   *log.Log
	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter creates a new rate limiter manager.
// r: The number of events allowed per second.
// b: The burst size (how many requests can be made in a short burst).
// ttl: How long to keep an IP's limiter in memory after its last request.
func NewIPRateLimiter(r rate.Limit, b int, ttl time.Duration) *IPRateLimiter {
	limiter := &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		mu:      &sync.Mutex{},
		rate:    r,
		burst:   b,
		ttl:     ttl,
		logger:  log.NewNopLogger(),
		stop:    make(chan struct{}),
	}

	go limiter.cleanupClients()

	return limiter
}

// NewPerMinuteLimiter allows perMinute requests per client per minute, all of
// which may arrive in one burst.
func NewPerMinuteLimiter(perMinute int, ttl time.Duration) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(float64(perMinute)/60), perMinute, ttl)
}

// WithLogger sets the logger used for rejected requests.
func (l *IPRateLimiter) WithLogger(logger *log.Log) *IPRateLimiter {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// getLimiter retrieves or creates a limiter for a given IP address.
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, exists := l.clients[ip]
	if !exists {
		client = &clientLimiter{
			limiter: rate.NewLimiter(l.rate, l.burst),
		}
		l.clients[ip] = client
	}

	client.lastSeen = time.Now()
	return client.limiter
}

// cleanupClients periodically removes limiters for inactive IPs.
func (l *IPRateLimiter) cleanupClients() {
	interval := l.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

func (l *IPRateLimiter) sweep(now time.Time) {
	defer func() {
		helpers.RecoverException(recover())
	}()
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, client := range l.clients {
		if now.Sub(client.lastSeen) > l.ttl {
			delete(l.clients, ip)
		}
	}
}

// StopCleanup stops the cleanup goroutine.
func (l *IPRateLimiter) StopCleanup() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// retryAfter is the whole number of seconds until one token is back.
func (l *IPRateLimiter) retryAfter() int {
	if l.rate <= 0 {
		return 60
	}
	return int(math.Ceil(1 / float64(l.rate)))
}

// Middleware returns the Gin middleware handler.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// RemoteAddr, not forwarded headers; configure gin's trusted proxies
		// when running behind one.
		ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			ip = c.Request.RemoteAddr
		}

		if !l.getLimiter(ip).Allow() {
			l.logger.Warn(constant.RateLimited, log.String("client_ip", ip), log.String("path", c.Request.URL.Path))
			c.Header("Retry-After", strconv.Itoa(l.retryAfter()))
			c.Header("X-RateLimit-Limit", strconv.Itoa(l.burst))
			AbortWithBlame(c, http.StatusTooManyRequests, blame.RateLimitExceeded(ip))
			return
		}

		c.Next()
	}
}
