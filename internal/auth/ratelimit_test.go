package auth

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterBlocksAfterMaxAttempts(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("1.2.3.4"))
	}
	require.False(t, rl.Allow("1.2.3.4"))
	require.False(t, rl.BlockedUntil("1.2.3.4").IsZero())

	// Other clients are unaffected
	require.True(t, rl.Allow("5.6.7.8"))

	rl.RecordSuccess("1.2.3.4")
	require.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond, time.Hour)
	defer rl.Stop()

	require.True(t, rl.Allow("k"))
	time.Sleep(20 * time.Millisecond)
	require.True(t, rl.Allow("k"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, time.Minute)
	defer rl.Stop()

	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, rl.Middleware())

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		return rec
	}

	require.Equal(t, http.StatusOK, do().Code)
	rec := do()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.NotEqual(t, "0", rec.Header().Get("Retry-After"))
}

func loginRequest(remoteAddr, forwardedFor string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		req.Header.Set(echo.HeaderXRealIP, forwardedFor)
	}
	return req
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(5, 15*time.Minute, 15*time.Minute)
	defer rl.Stop()

	// A bare server: no IPExtractor configured
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusUnauthorized) }, rl.Middleware())

	blocked := 0
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, loginRequest("203.0.113.9:51000", "198.51.100."+strconv.Itoa(i)))
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	require.Equal(t, 45, blocked)
}

func TestClientIPExtractor(t *testing.T) {
	direct, err := ClientIPExtractor(nil)
	require.NoError(t, err)
	require.Equal(t, "203.0.113.9", direct(loginRequest("203.0.113.9:51000", "198.51.100.1")))

	behindProxy, err := ClientIPExtractor([]string{"10.0.0.1", "fd00::/8"})
	require.NoError(t, err)
	require.Equal(t, "198.51.100.1", behindProxy(loginRequest("10.0.0.1:443", "198.51.100.1")))
	// Only the named proxy is trusted, not every private address
	require.Equal(t, "10.0.0.2", behindProxy(loginRequest("10.0.0.2:443", "198.51.100.1")))
	require.Equal(t, "203.0.113.9", behindProxy(loginRequest("203.0.113.9:51000", "198.51.100.1")))

	_, err = ClientIPExtractor([]string{"proxy.internal"})
	require.Error(t, err)
	_, err = ClientIPExtractor([]string{"10.0.0.0/33"})
	require.Error(t, err)
}

func TestLimiterBehindTrustedProxy(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, time.Minute)
	defer rl.Stop()

	extractor, err := ClientIPExtractor([]string{"10.0.0.1"})
	require.NoError(t, err)
	e := echo.New()
	e.IPExtractor = extractor
	e.POST("/login", func(c echo.Context) error { return c.String(http.StatusOK, ClientIP(c)) }, rl.Middleware())

	serve := func(forwardedFor string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, loginRequest("10.0.0.1:443", forwardedFor))
		return rec
	}

	rec := serve("198.51.100.1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "198.51.100.1", rec.Body.String())
	require.Equal(t, http.StatusTooManyRequests, serve("198.51.100.1").Code)
	// Another client behind the same proxy has its own allowance
	require.Equal(t, http.StatusOK, serve("198.51.100.2").Code)
}

func TestSubmissionLimit(t *testing.T) {
	limit := SubmissionLimit(2)
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusCreated) }
	e.POST("/api/grievances", ok, limit)
	e.POST("/grievance", ok, limit)

	post := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "203.0.113.9:51000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusCreated, post("/api/grievances").Code)
	require.Equal(t, http.StatusCreated, post("/grievance").Code)

	rec := post("/grievance")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/plain")

	rec = post("/api/grievances")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.JSONEq(t, `{"error":"too many submissions, please try again in a minute"}`, rec.Body.String())
}
