package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestFixedWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewFixedWindow(5, 15*time.Minute)
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if ok, _ := l.Allow("10.0.0.1"); !ok {
			t.Fatalf("attempt %d rejected", i+1)
		}
		now = now.Add(time.Minute)
	}
	ok, retry := l.Allow("10.0.0.1")
	if ok {
		t.Fatal("6th attempt allowed")
	}
	if retry != 10*time.Minute {
		t.Fatalf("retry = %v, want 10m", retry)
	}

	if ok, _ := l.Allow("10.0.0.2"); !ok {
		t.Fatal("other client rejected")
	}

	now = now.Add(10 * time.Minute)
	if ok, _ := l.Allow("10.0.0.1"); !ok {
		t.Fatal("attempt after window rejected")
	}
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	now := time.Now()
	l := NewFixedWindow(1, time.Minute)
	l.SetClock(func() time.Time { return now })
	l.Allow("a")
	l.Allow("b")

	now = now.Add(2 * time.Minute)
	l.Allow("c")
	if len(l.windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(l.windows))
	}
}

func TestConcurrentAllowNeverExceedsLimit(t *testing.T) {
	l := NewFixedWindow(5, time.Hour)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("k"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 5 {
		t.Fatalf("allowed = %d, want 5", allowed)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewFixedWindow(2, time.Minute)
	r := gin.New()
	r.POST("/login", l.Middleware("Too many login attempts"), func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After header")
		}
	}
	want := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}
