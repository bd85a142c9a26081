// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	// Clean up old visitors every minute
	go rl.cleanupVisitors()

	return rl
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mtx.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", i18n.T(lang, i18n.KeyRateLimited), nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimits bundles the per-route-group limiters.
type RateLimits struct {
	General gin.HandlerFunc
	Auth    gin.HandlerFunc
	Upload  gin.HandlerFunc
}

func passThrough(c *gin.Context) { c.Next() }

// NewRateLimits builds limiters; with enabled false every limiter is a
// no-op.
func NewRateLimits(enabled bool, generalPerSecond, generalBurst, authPerMinute, uploadPerMinute int) RateLimits {
	if !enabled {
		return RateLimits{General: passThrough, Auth: passThrough, Upload: passThrough}
	}

	return RateLimits{
		General: NewRateLimiter(rate.Limit(atLeastOne(generalPerSecond)), atLeastOne(generalBurst)).Middleware(),
		Auth:    NewRateLimiter(perMinute(authPerMinute), atLeastOne(authPerMinute)).Middleware(),
		Upload:  NewRateLimiter(perMinute(uploadPerMinute), atLeastOne(uploadPerMinute)).Middleware(),
	}
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(atLeastOne(n)))
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
