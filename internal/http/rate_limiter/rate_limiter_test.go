package rate_limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewareLimitsPerClient(t *testing.T) {
	l := New(1, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := range 2 {
		if code := call("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := call("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", code)
	}
	if code := call("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("expected other client to pass, got %d", code)
	}
}

func TestCleanupForgetsIdleVisitors(t *testing.T) {
	l := New(1, 1)
	l.GetVisitor("10.0.0.1")
	l.GetVisitor("10.0.0.2")
	l.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)

	l.cleanup(idleTimeout)

	if len(l.visitors) != 1 {
		t.Errorf("expected 1 visitor left, got %d", len(l.visitors))
	}
}
