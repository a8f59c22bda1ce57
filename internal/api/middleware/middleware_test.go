package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/kiranshivaraju/reelinsight/internal/api/middleware"
	"github.com/kiranshivaraju/reelinsight/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock Cache ---

type mockCache struct {
	cache.Cache
	counter int64
	keys    []string
	err     error
}

func (m *mockCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.counter++
	m.keys = append(m.keys, key)
	return m.counter, m.err
}

// --- helpers ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func hashKey(t *testing.T, rawKey string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func errMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// ========================================
// Auth Middleware Tests
// ========================================

func TestAuth_DisabledPassesThrough(t *testing.T) {
	auth := mw.NewAuth(nil)
	assert.False(t, auth.Enabled())

	w := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_BlankHashesIgnored(t *testing.T) {
	assert.False(t, mw.NewAuth([]string{"", "  "}).Enabled())
}

func TestAuth_MissingAuthHeader(t *testing.T) {
	auth := mw.NewAuth([]string{hashKey(t, "ri_secret_key_123")})
	w := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing or invalid Authorization header", errMessage(t, w))
}

func TestAuth_InvalidBearerFormat(t *testing.T) {
	auth := mw.NewAuth([]string{hashKey(t, "ri_secret_key_123")})
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_KeyTooShort(t *testing.T) {
	auth := mw.NewAuth([]string{hashKey(t, "ri_secret_key_123")})
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer short")
	w := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid API key format", errMessage(t, w))
}

func TestAuth_WrongKey(t *testing.T) {
	auth := mw.NewAuth([]string{hashKey(t, "ri_secret_key_123")})
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer ri_other_key_456")
	w := httptest.NewRecorder()
	auth.Authenticate(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid API key", errMessage(t, w))
}

func TestAuth_ValidKeySetsPrefix(t *testing.T) {
	rawKey := "ri_secret_key_123"
	auth := mw.NewAuth([]string{hashKey(t, "ri_unrelated_000"), hashKey(t, rawKey)})

	var gotPrefix string
	var gotOK bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefix, gotOK = mw.GetKeyPrefix(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "bearer "+rawKey)
	w := httptest.NewRecorder()
	auth.Authenticate(inner).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotOK)
	assert.Equal(t, rawKey[:8], gotPrefix)
}

// ========================================
// Rate Limit Middleware Tests
// ========================================

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	mc := &mockCache{}
	handler := mw.NewRateLimit(mc, 10).Limit(okHandler())

	req := httptest.NewRequest("POST", "/test", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, []string{"ratelimit:ip:203.0.113.7"}, mc.keys)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	mc := &mockCache{counter: 10} // next IncrWithExpiry will return 11
	handler := mw.NewRateLimit(mc, 10).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, errMessage(t, w))
}

func TestRateLimit_KeyedByAPIKey(t *testing.T) {
	rawKey := "ri_secret_key_123"
	auth := mw.NewAuth([]string{hashKey(t, rawKey)})
	mc := &mockCache{}
	handler := auth.Authenticate(mw.NewRateLimit(mc, 10).Limit(okHandler()))

	req := httptest.NewRequest("POST", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ratelimit:key:ri_secre"}, mc.keys)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mc := &mockCache{err: errors.New("redis down")}
	handler := mw.NewRateLimit(mc, 1).Limit(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	for _, perMin := range []int{0, -1} {
		mc := &mockCache{counter: 1000}
		rl := mw.NewRateLimit(mc, perMin)
		assert.False(t, rl.Enabled())

		handler := rl.Limit(okHandler())
		for i := 0; i < 20; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
		}
		assert.Empty(t, mc.keys, "disabled limiter must not touch the cache")
	}
}

func TestRateLimit_MemoryCacheWindow(t *testing.T) {
	handler := mw.NewRateLimit(cache.NewMemoryCache(), 2).Limit(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/test", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own window.
	req := httptest.NewRequest("POST", "/test", nil)
	req.RemoteAddr = "198.51.100.2:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Recovery Middleware Tests
// ========================================

func TestRecovery_CatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("something went wrong")
	})
	w := httptest.NewRecorder()
	mw.Recovery(panicking).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred", errMessage(t, w))
}

func TestRecovery_NoPanic(t *testing.T) {
	w := httptest.NewRecorder()
	mw.Recovery(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Logging Middleware Tests
// ========================================

func TestLogger_SetsStatus(t *testing.T) {
	w := httptest.NewRecorder()
	mw.Logger(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	aborting := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	})
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		mw.Recovery(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	})
}

func TestLogger_LogsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream"))
	})
	mw.Logger(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/process-reel", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "/api/process-reel", entry["path"])
	assert.Equal(t, float64(http.StatusBadGateway), entry["status"])
	assert.Equal(t, float64(len("upstream")), entry["bytes"])
}
