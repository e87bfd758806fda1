package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestLimiter(rate float64, burst int) (*RateLimiter, *time.Time) {
	now := time.Date(2026, time.July, 15, 9, 0, 0, 0, time.UTC)
	rl := &RateLimiter{
		buckets:   make(map[string]*bucket),
		rate:      rate,
		burst:     burst,
		idleAfter: defaultIdleAfter,
		now:       func() time.Time { return now },
	}
	return rl, &now
}

func TestRateLimiterBurstThenRefill(t *testing.T) {
	rl, now := newTestLimiter(1, 2)

	if !rl.Allow("c1") || !rl.Allow("c1") {
		t.Fatal("burst requests should be allowed")
	}
	if rl.Allow("c1") {
		t.Fatal("request beyond burst should be rejected")
	}

	*now = now.Add(1 * time.Second)
	if !rl.Allow("c1") {
		t.Fatal("expected one token after refill")
	}
	if rl.Allow("c1") {
		t.Fatal("second request after single refill should be rejected")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl, _ := newTestLimiter(1, 1)

	if !rl.Allow("c1") {
		t.Fatal("first client should be allowed")
	}
	if !rl.Allow("c2") {
		t.Fatal("second client should have its own bucket")
	}
	if rl.Allow("c1") {
		t.Fatal("first client should be exhausted")
	}
}

func TestRateLimiterSweepEvictsIdleBuckets(t *testing.T) {
	rl, now := newTestLimiter(1, 1)

	rl.Allow("idle")
	*now = now.Add(5 * time.Minute)
	rl.Allow("active")
	*now = now.Add(6 * time.Minute)

	if evicted := rl.sweep(); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if _, ok := rl.buckets["idle"]; ok {
		t.Fatal("idle bucket survived sweep")
	}
	if _, ok := rl.buckets["active"]; !ok {
		t.Fatal("active bucket was evicted")
	}
}

func TestRateLimitMiddlewareRepliesSpanish429(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.Header.Set("X-Real-Ip", "203.0.113.9")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if i == 0 && rr.Code != http.StatusOK {
			t.Fatalf("first request status = %d", rr.Code)
		}
		if i == 1 {
			if rr.Code != http.StatusTooManyRequests {
				t.Fatalf("second request status = %d, want 429", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), "muchas solicitudes") {
				t.Fatalf("body = %q", rr.Body.String())
			}
		}
	}
}
