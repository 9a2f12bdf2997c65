package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type attemptStoreStub struct {
	count    int
	countErr error
	recorded int
}

func (s *attemptStoreStub) TrimWindow(context.Context, string, time.Duration, time.Time) error {
	return nil
}

func (s *attemptStoreStub) CountAttempts(context.Context, string, time.Duration, time.Time) (int, error) {
	return s.count, s.countErr
}

func (s *attemptStoreStub) RecordAttempt(context.Context, string, time.Time) error {
	s.recorded++
	s.count++
	return nil
}

func (s *attemptStoreStub) OldestAttempt(context.Context, string, time.Duration, time.Time) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func rateLimitedRouter(store *attemptStoreStub, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, nil)
	r := gin.New()
	r.POST("/login", limiter.RateLimit(RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     time.Minute,
		Identifier: ClientIPIdentifier(),
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitWindow(t *testing.T) {
	store := &attemptStoreStub{}
	r := rateLimitedRouter(store, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("remaining = %s, want 0", w.Header().Get("X-RateLimit-Remaining"))
	}
	if store.recorded != 2 {
		t.Fatalf("recorded %d attempts, want 2", store.recorded)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	store := &attemptStoreStub{count: 100, countErr: errors.New("redis down")}
	r := rateLimitedRouter(store, 2)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when the store is down", w.Code)
	}
}

func TestRateLimitDisabledWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(nil, nil)
	r := gin.New()
	r.GET("/x", limiter.RateLimit(RateLimitRule{Limit: 1, Window: time.Minute, Identifier: ClientIPIdentifier()}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	}
}
