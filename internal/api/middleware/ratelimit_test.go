package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatherly/server/internal/config"
)

func TestLoginRateLimit_AllowsInitialBurst(t *testing.T) {
	cfg := config.RateLimitConfig{
		LoginPer15Minutes: 5,
	}

	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)

		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, res.Code)
		}
	}
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{
		LoginPer15Minutes: 5,
	}

	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	clientIP := "192.168.1.101:54321"

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = clientIP
		req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = clientIP
	req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", res.Code)
	}
	if got := res.Header().Get("Retry-After"); got != "180" {
		t.Fatalf("expected Retry-After 180, got %q", got)
	}
}

func TestLoginRateLimit_SeparatePerClient(t *testing.T) {
	cfg := config.RateLimitConfig{
		LoginPer15Minutes: 5,
	}

	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1000"
	req = req.WithContext(WithRateLimitTier(req.Context(), TierLogin))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected second client to pass, got %d", res.Code)
	}
}

func TestRateLimit_SkipsHealthEndpoints(t *testing.T) {
	cfg := config.RateLimitConfig{
		PublicPerMinute: 1,
	}

	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.3:1000"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		if res.Code != http.StatusOK {
			t.Fatalf("health check %d: expected 200, got %d", i+1, res.Code)
		}
	}
}

func TestClientKey_IgnoresForwardedForFromUntrustedSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "203.0.113.7:4444"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")

	if got := clientKey(req, nil); got != "203.0.113.7" {
		t.Fatalf("expected direct IP, got %q", got)
	}
}

func TestClientKey_TrustsConfiguredProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "10.1.0.5:4444"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.0.5")

	if got := clientKey(req, []string{"10.1.0.0/16"}); got != "198.51.100.1" {
		t.Fatalf("expected forwarded IP, got %q", got)
	}
}
