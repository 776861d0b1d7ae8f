package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"crovpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-IP token buckets ─────────────────────────────────────────────────────

type visitante struct {
	limiter *rate.Limiter
	visto   time.Time
}

// IPLimiter keeps one token bucket per client IP. Buckets idle for longer
// than ttl are purged by Purgar.
type IPLimiter struct {
	mu         sync.Mutex
	visitantes map[string]*visitante
	intervalo  time.Duration
	rafaga     int
	ttl        time.Duration
	now        func() time.Time
}

// NewIPLimiter allows n requests per window per IP, with bursts up to n.
func NewIPLimiter(n int, window time.Duration) *IPLimiter {
	return &IPLimiter{
		visitantes: make(map[string]*visitante),
		intervalo:  window / time.Duration(n),
		rafaga:     n,
		ttl:        window * 3,
		now:        time.Now,
	}
}

func (l *IPLimiter) permitir(ip string) bool {
	l.mu.Lock()
	v, ok := l.visitantes[ip]
	if !ok {
		v = &visitante{limiter: rate.NewLimiter(rate.Every(l.intervalo), l.rafaga)}
		l.visitantes[ip] = v
	}
	ahora := l.now()
	v.visto = ahora
	l.mu.Unlock()
	return v.limiter.AllowN(ahora, 1)
}

// Purgar drops idle buckets and reports how many were removed.
func (l *IPLimiter) Purgar() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	limite := l.now().Add(-l.ttl)
	n := 0
	for ip, v := range l.visitantes {
		if v.visto.Before(limite) {
			delete(l.visitantes, ip)
			n++
		}
	}
	return n
}

// PurgarCada runs Purgar every interval until ctx ends.
func (l *IPLimiter) PurgarCada(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Purgar(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter: idle buckets purged")
			}
		}
	}
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (l *IPLimiter) Middleware(msg string) gin.HandlerFunc {
	retry := strconv.Itoa(int(max(time.Second, l.intervalo) / time.Second))
	return func(c *gin.Context) {
		if !l.permitir(c.ClientIP()) {
			c.Header("Retry-After", retry)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(l *IPLimiter) gin.HandlerFunc {
	return l.Middleware("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(l *IPLimiter) gin.HandlerFunc {
	return l.Middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
