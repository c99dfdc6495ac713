// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a keyed token-bucket limiter. Each key (client IP, email)
// gets its own rate.Limiter. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New allows n requests per period per key, with a burst of n.
// Keys unused for 2*period are evicted by a background sweep; call Stop to
// end it.
func New(n int, period time.Duration) *Limiter {
	if n < 1 {
		n = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		limit:   rate.Every(period / time.Duration(n)),
		burst:   n,
		idle:    2 * period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = l.now()
	return e.lim
}

// Allow reports whether one more request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).AllowN(l.now(), 1)
}

// Reset forgets key so its next request starts with a full bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP first, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AuthLimiter throttles login and signup attempts per client IP and, for
// logins, per email address.
type AuthLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewAuthLimiter allows perMinute attempts per IP per minute and half that
// (at least one) per email.
func NewAuthLimiter(perMinute int) *AuthLimiter {
	if perMinute < 1 {
		perMinute = 10
	}
	perEmail := perMinute / 2
	if perEmail < 1 {
		perEmail = 1
	}
	return &AuthLimiter{
		ip:    New(perMinute, time.Minute),
		email: New(perEmail, time.Minute),
	}
}

// Check reports whether the attempt may proceed. reason is a user-facing
// message when it may not.
func (a *AuthLimiter) Check(r *http.Request, email string) (allowed bool, reason string) {
	if !a.ip.Allow(ClientIP(r)) {
		return false, "Too many attempts. Please wait a minute before trying again."
	}
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		if !a.email.Allow(key) {
			return false, "Too many attempts for this account. Please wait a minute."
		}
	}
	return true, ""
}

// ResetEmail clears the per-email budget after a successful login.
func (a *AuthLimiter) ResetEmail(email string) {
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		a.email.Reset(key)
	}
}

// Stop ends both background sweeps.
func (a *AuthLimiter) Stop() {
	a.ip.Stop()
	a.email.Stop()
}
