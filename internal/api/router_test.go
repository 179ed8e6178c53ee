package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wonny/stocklens/internal/analysis"
	"github.com/wonny/stocklens/internal/api/handlers"
	"github.com/wonny/stocklens/pkg/logger"
)

type nopAnalyzer struct{}

func (nopAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	return nil, fmt.Errorf("not wired in this test")
}

type nopLister struct{}

func (nopLister) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	return nil, fmt.Errorf("not wired in this test")
}

func newTestRouter(origins []string) http.Handler {
	log := logger.NewNop()
	return NewRouter(
		handlers.NewAnalyzeHandler(nopAnalyzer{}, log),
		handlers.NewModelsHandler(nopLister{}, log),
		origins,
		log,
	)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodOptions, "/analyze/AAPL", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}

	// 자격증명 헤더가 preflight에 허용되는지
	allowHeaders := rec.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{"X-KIS-App-Key", "X-Gemini-Key"} {
		if !strings.Contains(allowHeaders, h) {
			t.Errorf("allow-headers %q missing %s", allowHeaders, h)
		}
	}
}

func TestCORSSpecificOrigin(t *testing.T) {
	router := newTestRouter([]string{"http://allowed.example"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://allowed.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.example" {
		t.Errorf("allow-origin = %q, want the request origin", got)
	}

	// 허용 안 된 origin은 헤더 미설정
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want empty for a disallowed origin", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
