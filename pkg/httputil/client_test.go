package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

func testClient() *Client {
	return New(&config.Config{Env: "test"}, logger.NewNop())
}

func TestNew(t *testing.T) {
	client := testClient()
	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.httpClient == nil {
		t.Error("Expected http.Client to be initialized")
	}
	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}
	if !client.retryConfig.Enabled {
		t.Error("Expected retry to be enabled by default")
	}
}

func TestNewWithTimeout(t *testing.T) {
	timeout := 5 * time.Second
	client := NewWithTimeout(&config.Config{Env: "test"}, logger.NewNop(), timeout)

	if client.httpClient.Timeout != timeout {
		t.Errorf("Expected timeout=%v, got %v", timeout, client.httpClient.Timeout)
	}
}

func TestWithRetry(t *testing.T) {
	client := testClient().WithRetry(5, 2*time.Second)

	if client.retryConfig.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got %d", client.retryConfig.MaxRetries)
	}
	if client.retryConfig.InitialDelay != 2*time.Second {
		t.Errorf("Expected InitialDelay=2s, got %v", client.retryConfig.InitialDelay)
	}
}

func TestDisableRetry(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient().DisableRetry()

	resp, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	// 재시도 없음: 5xx여도 1회만
	if atomic.LoadInt64(&hits) != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := testClient().WithRetry(3, time.Millisecond)

	resp, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if atomic.LoadInt64(&hits) != 3 {
		t.Errorf("server hit %d times, want 3", hits)
	}
}

func TestGetWithHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Mozilla/5.0" {
			t.Errorf("User-Agent = %q, want Mozilla/5.0", got)
		}
		if got := r.Header.Get("Referer"); got != "https://example.com/" {
			t.Errorf("Referer = %q", got)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := testClient().DisableRetry()

	resp, err := client.GetWithHeaders(context.Background(), srv.URL, map[string]string{
		"User-Agent": "Mozilla/5.0",
		"Referer":    "https://example.com/",
	})
	if err != nil {
		t.Fatalf("GetWithHeaders failed: %v", err)
	}
	defer resp.Body.Close()
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := testClient().DisableRetry()

	resp, err := client.PostJSON(context.Background(), srv.URL, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	defer resp.Body.Close()
}

func TestWithRateLimit(t *testing.T) {
	client := testClient().WithRateLimit(10)
	if client.rateLimiter == nil {
		t.Error("Expected rate limiter to be set")
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := map[int]bool{
		500: true,
		502: true,
		429: true,
		404: false,
		200: false,
	}
	for code, want := range cases {
		if got := IsRetryableError(code); got != want {
			t.Errorf("IsRetryableError(%d) = %v, want %v", code, got, want)
		}
	}
}
