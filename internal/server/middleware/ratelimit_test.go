package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock управляет временем лимитера в тестах
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, rate float64, burst int) (*RateLimiter, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(rate, burst, slog.New(slog.NewTextHandler(io.Discard, nil)))
	limiter.now = clock.Now
	t.Cleanup(limiter.Stop)

	return limiter, clock
}

func TestNewRateLimiter(t *testing.T) {
	limiter, _ := newTestLimiter(t, 10, 20)

	assert.InDelta(t, 10.0, limiter.rate, 0)
	assert.InDelta(t, 20.0, limiter.burst, 0)
	assert.Equal(t, time.Minute, limiter.idle)
	assert.NotNil(t, limiter.buckets)

	zeroBurst, _ := newTestLimiter(t, 1, 0)
	assert.InDelta(t, 1.0, zeroBurst.burst, 0)

	// Stop можно вызвать повторно
	limiter.Stop()
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("burst is allowed then denied", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 1, 3)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("192.168.1.1"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, limiter.Allow("192.168.1.1"))
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		limiter, clock := newTestLimiter(t, 2, 2)

		assert.True(t, limiter.Allow("k"))
		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"))

		clock.Advance(500 * time.Millisecond)
		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"))

		// не больше burst после долгого простоя
		clock.Advance(time.Hour)
		assert.True(t, limiter.Allow("k"))
		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 1, 1)

		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})
}

func TestRateLimiter_ReserveWait(t *testing.T) {
	limiter, _ := newTestLimiter(t, 4, 1)

	ok, _ := limiter.reserve("k")
	require.True(t, ok)

	ok, wait := limiter.reserve("k")
	assert.False(t, ok)
	assert.Equal(t, 250*time.Millisecond, wait)
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	limiter, clock := newTestLimiter(t, 1, 1)

	limiter.Allow("old")
	clock.Advance(2 * time.Minute)
	limiter.Allow("fresh")

	limiter.cleanupOldBuckets()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.buckets, "old")
	assert.Contains(t, limiter.buckets, "fresh")
}

func TestRateLimitMiddleware(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	limiter, _ := newTestLimiter(t, 1, 2)
	handler := RateLimitMiddleware(limiter, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/documents-sync.php", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
	assert.Contains(t, logBuf.String(), "Rate limit exceeded")
	assert.Contains(t, logBuf.String(), "192.168.1.1")
}

func TestRateLimitByPathMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loginLimiter, _ := newTestLimiter(t, 1, 1)
	defaultLimiter, _ := newTestLimiter(t, 1, 5)

	handler := RateLimitByPathMiddleware(
		map[string]*RateLimiter{"/auth.php": loginLimiter},
		defaultLimiter,
		logger,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("/auth.php"))
	assert.Equal(t, http.StatusTooManyRequests, send("/auth.php"))

	// остальные пути используют свой лимит
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send("/documents-sync.php"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("/documents-sync.php"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For with single IP",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For with multiple IPs",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1, 10.0.0.2, 10.0.0.3",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Real-IP when X-Forwarded-For is empty",
			remoteAddr: "10.0.0.1:12345",
			xRealIP:    "192.168.2.1",
			expectedIP: "192.168.2.1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.3.1:54321",
			expectedIP: "192.168.3.1",
		},
		{
			name:       "RemoteAddr that is not host:port",
			remoteAddr: "pipe",
			expectedIP: "pipe",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1",
			xRealIP:    "192.168.2.1",
			expectedIP: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, getClientIP(req))
		})
	}
}
