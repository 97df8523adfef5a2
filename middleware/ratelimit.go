package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleCutoff = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-client-IP token bucket of r requests per second
// with burst b. Guild endpoints are polled aggressively by some game
// clients, so buckets for idle IPs are dropped in the background rather
// than accumulating for the life of the process.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var buckets sync.Map

	go func() {
		ticker := time.NewTicker(limiterIdleCutoff / 2)
		defer ticker.Stop()
		for range ticker.C {
			stale := time.Now().Add(-limiterIdleCutoff)
			buckets.Range(func(k, v interface{}) bool {
				if v.(*clientBucket).lastSeen.Before(stale) {
					buckets.Delete(k)
				}
				return true
			})
		}
	}()

	return func(c *gin.Context) {
		v, _ := buckets.LoadOrStore(c.ClientIP(), &clientBucket{limiter: rate.NewLimiter(r, b)})
		bucket := v.(*clientBucket)
		bucket.lastSeen = time.Now()
		if !bucket.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
