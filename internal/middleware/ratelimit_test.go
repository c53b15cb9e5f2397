package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("203.0.113.7:1"); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := send("203.0.113.7:2"); code != http.StatusOK {
		t.Fatalf("second request = %d", code)
	}
	if code := send("203.0.113.7:3"); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", code)
	}
	// A different client has its own window.
	if code := send("198.51.100.9:1"); code != http.StatusOK {
		t.Fatalf("other client = %d", code)
	}
}

func TestRateLimitWindowExpires(t *testing.T) {
	h := RateLimit(1, time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request = %d", rec.Code)
	}

	time.Sleep(5 * time.Millisecond)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("request after window = %d, want 200", rec.Code)
	}
}
