package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func newFakeLimiterStore() *fakeLimiterStore {
	return &fakeLimiterStore{counts: make(map[string]int64)}
}

func (f *fakeLimiterStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBlocksIPOverLimit(t *testing.T) {
	store := newFakeLimiterStore()
	policy := NewRateLimitPolicy("verify", time.Minute, 2, 0)
	mw := RateLimit(policy, store, nil)

	calls := 0
	handler := mw(okHandler(&calls))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/summary?badge_id=T001", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, rec.Code)
		}
	}
	blocked := send()
	if blocked.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", blocked.Code)
	}
	if calls != 2 {
		t.Fatalf("handler must not run when blocked, ran %d times", calls)
	}
}

func TestRateLimitCountsBadgeSeparatelyFromIP(t *testing.T) {
	store := newFakeLimiterStore()
	policy := NewRateLimitPolicy("verify", time.Minute, 0, 1)
	mw := RateLimit(policy, store, nil)

	calls := 0
	handler := mw(okHandler(&calls))

	send := func(addr, badge string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/summary?badge_id="+badge, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("198.51.100.1:1000", "T001"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	// Same badge from a different address still counts against the badge.
	if rec := send("198.51.100.2:1000", "T001"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if rec := send("198.51.100.2:1000", "T002"); rec.Code != http.StatusOK {
		t.Fatalf("other badge expected 200 got %d", rec.Code)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newFakeLimiterStore()
	policy := NewRateLimitPolicy("verify", 0, 0, 0)
	mw := RateLimit(policy, store, nil)

	calls := 0
	handler := mw(okHandler(&calls))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/summary", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
	}
	if calls != 5 {
		t.Fatalf("disabled policy must never block, ran %d times", calls)
	}
	if len(store.counts) != 0 {
		t.Fatal("disabled policy must not touch the store")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "203.0.113.8")
	if got := clientIP(req); got != "203.0.113.8" {
		t.Fatalf("expected real-ip header, got %q", got)
	}

	req.Header.Del("X-Real-IP")
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
}
