package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LocalRateLimiter is the in-process per-IP token bucket used when redis is disabled.
type LocalRateLimiter struct {
	limit   int
	every   rate.Limit
	clients map[string]*rate.Limiter

	mu sync.Mutex
}

func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		clients: make(map[string]*rate.Limiter),
	}
}

func (l *LocalRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.clients[ip]
	if !ok {
		lim = rate.NewLimiter(l.every, l.limit)
		l.clients[ip] = lim
	}
	return lim
}

func (l *LocalRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := l.limiterFor(c.ClientIP())

		now := time.Now()
		reservation := lim.ReserveN(now, 1)
		delay := reservation.DelayFrom(now)
		if delay > 0 {
			reservation.CancelAt(now)
			setLimitHeaders(c, l.limit, 0, now.Add(delay))
			tooManyRequests(c, delay)
			return
		}

		setLimitHeaders(c, l.limit, int64(lim.TokensAt(now)), now)
		c.Next()
	}
}
