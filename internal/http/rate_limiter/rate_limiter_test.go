package rate_limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddleware_LimitsPerClient(t *testing.T) {
	l := New(1, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := call("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := call("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other clients must keep their own bucket, got %d", code)
	}
}

func TestEvictIdle(t *testing.T) {
	l := New(1, 1)
	l.GetVisitor("10.0.0.1")
	l.GetVisitor("10.0.0.2")

	l.evictIdle(time.Now())
	if got := l.Visitors(); got != 2 {
		t.Fatalf("expected recent visitors to stay, got %d", got)
	}

	l.evictIdle(time.Now().Add(visitorTTL + time.Second))
	if got := l.Visitors(); got != 0 {
		t.Errorf("expected idle visitors to be evicted, got %d", got)
	}
}
