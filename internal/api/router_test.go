package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"littlelemon-backend/config"
	"littlelemon-backend/internal/auth"
	"littlelemon-backend/internal/booking"
	"littlelemon-backend/internal/db"
	"littlelemon-backend/internal/store"
)

const testSecret = "test-secret"

type testEnv struct {
	t      *testing.T
	cfg    *config.Config
	store  store.Store
	router *gin.Engine
}

type envOption func(*config.Config, *store.Store)

func withExposeAll() envOption {
	return func(cfg *config.Config, _ *store.Store) { cfg.Booking.ExposeAllBookings = true }
}

// withStore replaces the store seen by the booking service and handlers.
func withStore(wrap func(store.Store) store.Store) envOption {
	return func(_ *config.Config, s *store.Store) { *s = wrap(*s) }
}

func withRateLimit(perSec float64, burst int) envOption {
	return func(cfg *config.Config, _ *store.Store) {
		cfg.Server.RateLimitPerSec = perSec
		cfg.Server.RateLimitBurst = burst
	}
}

func withTrustedProxies(proxies ...string) envOption {
	return func(cfg *config.Config, _ *store.Store) { cfg.Server.TrustedProxies = proxies }
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
			CacheTTL:        time.Minute,
		},
		Auth: config.AuthConfig{
			JWTSecret:  testSecret,
			CookieName: "littlelemon_token",
			LoginURL:   "/accounts/login/",
		},
		Booking: config.BookingConfig{DefaultSlot: 10, FirstSlot: 0, LastSlot: 23},
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	gin.SetMode(gin.TestMode)

	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := testConfig()
	s := store.NewGormStore(gormDB)
	for _, opt := range opts {
		opt(cfg, &s)
	}

	svc := booking.NewService(cfg.Booking, s, nil)
	router, err := NewRouter(cfg, svc, s, &webpush.Options{VAPIDPublicKey: "public-key"})
	require.NoError(t, err)
	return &testEnv{t: t, cfg: cfg, store: s, router: router}
}

func (e *testEnv) token(subject, username string) string {
	tok, err := auth.IssueToken(testSecret, "", subject, username, time.Hour)
	require.NoError(e.t, err)
	return tok
}

// do performs a request; token may be empty for anonymous requests.
func (e *testEnv) do(method, target, token string, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(target, token string, form url.Values, header map[string]string) *httptest.ResponseRecorder {
	h := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range header {
		h[k] = v
	}
	return e.do(http.MethodPost, target, token, form.Encode(), h)
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/", "/about/", "/menu/"} {
		t.Run(path, func(t *testing.T) {
			w := env.do(http.MethodGet, path, "", "", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Little Lemon")
			assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			w = env.do(http.MethodGet, path, "", "", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = env.do(http.MethodGet, "/metrics", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/vapid_public_key", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"public-key"}`, w.Body.String())

	r := gin.New()
	r.GET("/api/vapid_public_key", NewHandler(nil, nil, nil, false).GetVAPIDPublicKey)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vapid_public_key", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit_ForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	env := newTestEnv(t, withRateLimit(0.001, 1))

	w := env.do(http.MethodGet, "/check-availability/?date=2024-06-01", "", "", map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodGet, "/check-availability/?date=2024-06-01", "", "", map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimit_ForwardedForFromTrustedProxy(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	env := newTestEnv(t, withRateLimit(0.001, 1), withTrustedProxies("192.0.2.0/24"))

	for _, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		w := env.do(http.MethodGet, "/check-availability/?date=2024-06-01", "", "", map[string]string{"X-Forwarded-For": ip})
		assert.Equal(t, http.StatusOK, w.Code, ip)
	}
	w := env.do(http.MethodGet, "/check-availability/?date=2024-06-01", "", "", map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNewRouter_RejectsInvalidTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"not-an-ip"}
	_, err := NewRouter(cfg, nil, nil, nil)
	assert.Error(t, err)
}
