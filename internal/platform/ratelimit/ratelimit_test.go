package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(h http.Handler) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	return rec.Code
}

func TestMiddleware_rejects_over_burst(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Middleware(New(1, 2))(ok)

	for i := 0; i < 2; i++ {
		if code := serve(h); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := serve(h); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
}

func TestMiddleware_disabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	l := New(0, 0)
	if l != nil {
		t.Fatal("expected nil limiter for rps 0")
	}
	h := Middleware(l)(ok)
	for i := 0; i < 100; i++ {
		if code := serve(h); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
}
