package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLocalLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := NewLocalLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "1.2.3.4", 3, time.Minute) {
			t.Fatalf("request %d blocked", i+1)
		}
	}
	if l.Allow(ctx, "1.2.3.4", 3, time.Minute) {
		t.Fatal("fourth request allowed")
	}
	if !l.Allow(ctx, "5.6.7.8", 3, time.Minute) {
		t.Fatal("other key blocked")
	}

	now = now.Add(20 * time.Second) // one token refills every 20s
	if !l.Allow(ctx, "1.2.3.4", 3, time.Minute) {
		t.Fatal("not refilled after 20s")
	}
}

func TestLocalLimiterSweepsIdleBuckets(t *testing.T) {
	l := NewLocalLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	l.Allow(ctx, "idle", 1, time.Second)
	now = now.Add(2 * time.Minute)
	l.Allow(ctx, "fresh", 1, time.Second)
	if len(l.buckets) != 1 {
		t.Fatalf("%d buckets after sweep, want 1", len(l.buckets))
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLocalLimiter()
	h := Middleware(l, ClientIP, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 3)
	for i := range codes {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes[i] = rec.Code
		if i == 2 && !strings.Contains(rec.Body.String(), "too many requests") {
			t.Errorf("429 body = %s", rec.Body.String())
		}
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		xff, remote, want string
	}{
		{"", "192.0.2.1:1234", "192.0.2.1"},
		{"203.0.113.7, 10.0.0.1", "192.0.2.1:1234", "192.0.2.1"},
		{"", "[2001:db8::1]:443", "2001:db8::1"},
		{"", "pipe", "pipe"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tc.remote
		if tc.xff != "" {
			r.Header.Set("X-Forwarded-For", tc.xff)
		}
		if got := ClientIP(r); got != tc.want {
			t.Errorf("ClientIP(xff=%q, remote=%q) = %q, want %q", tc.xff, tc.remote, got, tc.want)
		}
	}
}

func TestMiddlewareIgnoresRotatingForwardedFor(t *testing.T) {
	h := Middleware(NewLocalLimiter(), ClientIP, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var last int
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request from one peer: status %d, want 429", last)
	}
}

func TestByRoute(t *testing.T) {
	key := ByRoute("login", ClientIP)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1"
	if got := key(r); got != "login:192.0.2.1" {
		t.Fatalf("key = %q", got)
	}
	empty := ByRoute("login", func(*http.Request) string { return "" })
	if got := empty(r); got != "" {
		t.Fatalf("empty key = %q", got)
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	l := NewRedisLimiter(client)
	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), "k", 1, time.Minute) {
			t.Fatal("blocked while redis is unreachable")
		}
	}
}

// TestRedisLimiter runs against a real Redis when TALENTHUB_TEST_REDIS_URL is set.
func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("TALENTHUB_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TALENTHUB_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	key := "test-" + time.Now().Format("150405.000000000")
	t.Cleanup(func() { client.Del(context.Background(), keyPrefix+key) })
	l := NewRedisLimiter(client)
	ctx := context.Background()
	if !l.Allow(ctx, key, 2, time.Minute) || !l.Allow(ctx, key, 2, time.Minute) {
		t.Fatal("first two requests blocked")
	}
	if l.Allow(ctx, key, 2, time.Minute) {
		t.Fatal("third request allowed")
	}
}
