package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"proteomorphic/src/internal/analysis"
	"proteomorphic/src/internal/config"
)

func TestOptionsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(analysis.New(nil), nil, config.ServerConfig{})

	req, _ := http.NewRequest("OPTIONS", "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Errorf("Expected 204 No Content for OPTIONS request, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin: *, got %s", resp.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(analysis.New(nil), nil, config.ServerConfig{
		AllowOrigins: []string{"https://app.example.org"},
	})

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example.org", "https://app.example.org"},
		{"https://evil.example.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest("GET", "/api/health", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		resp := httptest.NewRecorder()
		s.Engine.ServeHTTP(resp, req)

		if got := resp.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %q: Access-Control-Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
		if resp.Code != http.StatusOK {
			t.Errorf("origin %q: status %d", tt.origin, resp.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(analysis.New(nil), nil, config.ServerConfig{})

	req, _ := http.NewRequest("GET", "/api/health", nil)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	generated := resp.Header().Get("X-Request-ID")
	if len(generated) != 36 {
		t.Errorf("expected a generated UUID, got %q", generated)
	}

	req, _ = http.NewRequest("GET", "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp = httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected incoming request id to be reused, got %q", got)
	}
}
