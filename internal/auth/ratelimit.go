package auth

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
)

// RateLimiter locks out a client after too many sign-in attempts. Attempts are
// counted in a fixed window that opens with the first attempt; exceeding the
// allowance locks the client out until lockedUntil.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*signInWindow
	done    chan struct{}
	stop    sync.Once

	allowance int
	window    time.Duration
	lockout   time.Duration
}

type signInWindow struct {
	opened      time.Time
	attempts    int
	lockedUntil time.Time
}

// NewRateLimiter allows allowance attempts per window, then refuses the client
// for lockout.
func NewRateLimiter(allowance int, window, lockout time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:   make(map[string]*signInWindow),
		done:      make(chan struct{}),
		allowance: allowance,
		window:    window,
		lockout:   lockout,
	}
	go rl.prune()
	return rl
}

// DefaultRateLimiter allows 5 attempts per 15 minutes with a 15 minute lockout
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 15*time.Minute, 15*time.Minute)
}

// Allow counts an attempt from client and reports whether it may go ahead
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.clients[client]
	switch {
	case w == nil:
		rl.clients[client] = &signInWindow{opened: now, attempts: 1}
		return true
	case now.Before(w.lockedUntil):
		return false
	case !w.lockedUntil.IsZero() || now.Sub(w.opened) > rl.window:
		*w = signInWindow{opened: now, attempts: 1}
		return true
	}

	w.attempts++
	if w.attempts > rl.allowance {
		w.lockedUntil = now.Add(rl.lockout)
		return false
	}
	return true
}

// RecordSuccess forgets the client's failed attempts
func (rl *RateLimiter) RecordSuccess(client string) {
	rl.mu.Lock()
	delete(rl.clients, client)
	rl.mu.Unlock()
}

// BlockedUntil returns the end of the client's lockout, or the zero time
func (rl *RateLimiter) BlockedUntil(client string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w := rl.clients[client]
	if w == nil || !time.Now().Before(w.lockedUntil) {
		return time.Time{}
	}
	return w.lockedUntil
}

// Stop ends the background pruning
func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) prune() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for client, w := range rl.clients {
				if now.Sub(w.opened) > rl.window && now.After(w.lockedUntil) {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware answers 429 with Retry-After while the client is locked out
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client := ClientIP(c)
			if rl.Allow(client) {
				return next(c)
			}

			retryAfter := int(time.Until(rl.BlockedUntil(client)).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"error":       "too many login attempts",
				"retry_after": retryAfter,
			})
		}
	}
}

// ClientIP is the address limits and audit entries are keyed on. Forwarding
// headers only count when the server was given an IPExtractor that trusts
// them; otherwise the connection's peer address is used.
func ClientIP(c echo.Context) string {
	if c.Echo().IPExtractor != nil {
		return c.RealIP()
	}
	return echo.ExtractIPDirect()(c.Request())
}

// ClientIPExtractor reads X-Forwarded-For only from the listed proxies (IPs
// or CIDR ranges). With no proxies the peer address is used as is.
func ClientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, proxy := range trustedProxies {
		ipNet, err := parseProxy(proxy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

func parseProxy(s string) (*net.IPNet, error) {
	if strings.Contains(s, "/") {
		_, ipNet, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", s, err)
		}
		return ipNet, nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy %q", s)
	}
	bits := 128
	if ip4 := ip.To4(); ip4 != nil {
		ip, bits = ip4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

// DefaultSubmissionsPerMinute caps anonymous grievance submissions per client
const DefaultSubmissionsPerMinute = 10

// SubmissionLimit limits anonymous form posts per client IP. One instance
// keeps one set of counters, so routes that share it share the allowance.
func SubmissionLimit(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = DefaultSubmissionsPerMinute
	}
	return echo.WrapMiddleware(httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(submissionLimitExceeded),
	))
}

func submissionLimitExceeded(w http.ResponseWriter, r *http.Request) {
	const message = "too many submissions, please try again in a minute"
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintln(w, "Too many submissions from your connection. Please wait a minute and try again.")
}
