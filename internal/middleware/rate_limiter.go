package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"sukiism/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// ── Per-IP rate limiter ───────────────────────────────────────────────────────
// Each client IP gets a token bucket holding limit requests that refills over
// window. Buckets of clients idle for a whole window are dropped.

type ipLimiter struct {
	every   rate.Limit
	burst   int
	clients *ttlcache.Cache[string, *rate.Limiter]
	now     func() time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	clients := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](window),
	)
	go clients.Start()
	return &ipLimiter{
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		clients: clients,
		now:     time.Now,
	}
}

// allow takes one token for key. When none is left it reports how long until
// the next one.
func (l *ipLimiter) allow(key string) (bool, time.Duration) {
	item, _ := l.clients.GetOrSet(key, rate.NewLimiter(l.every, l.burst))
	lim := item.Value()
	now := l.now()
	if lim.AllowN(now, 1) {
		return true, 0
	}
	r := lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

func (l *ipLimiter) handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.allow(c.ClientIP())
		if !ok {
			secs := math.Ceil(wait.Round(time.Millisecond).Seconds())
			c.Header("Retry-After", strconv.Itoa(int(secs)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(20, time.Minute).handler("too many login attempts, try again in a minute")
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window).handler("too many requests, slow down")
}
