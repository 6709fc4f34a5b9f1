package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than idleAfter are dropped on the next sweep.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &rateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		idleAfter: 3 * time.Minute,
		now:       time.Now,
	}
}

func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleAfter {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.idleAfter {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// ProxyHeaders leaves a bare address.
		return r.RemoteAddr
	}
	return ip
}

func (a *API) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.limiter != nil && !a.limiter.allow(clientIP(r)) {
			a.Response(w, http.StatusTooManyRequests, "too many booking attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
