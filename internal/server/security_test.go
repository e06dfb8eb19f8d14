package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

func serveSecured(config SecurityConfig, method, origin string, next http.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/sum", http.NoBody)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	SecurityMiddleware(config, next)(rec, req)
	return rec
}

func TestDefaultSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	if !config.EnableCORS || !slices.Equal(config.AllowedOrigins, []string{"*"}) {
		t.Errorf("CORS = %v %v, want enabled for *", config.EnableCORS, config.AllowedOrigins)
	}
	for _, m := range []string{"GET", "POST", "OPTIONS"} {
		if !slices.Contains(config.AllowedMethods, m) {
			t.Errorf("AllowedMethods = %v, missing %s", config.AllowedMethods, m)
		}
	}
	if config.MaxBodyBytes <= 0 || config.MaxWorkers <= 0 || config.MaxElements <= 0 {
		t.Errorf("limits = %d/%d/%d, want all positive", config.MaxBodyBytes, config.MaxWorkers, config.MaxElements)
	}
}

func TestSecurityMiddleware_Headers(t *testing.T) {
	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			called := false
			rec := serveSecured(DefaultSecurityConfig(), method, "", func(http.ResponseWriter, *http.Request) { called = true })

			if !called {
				t.Error("next handler was not called")
			}
			want := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"X-XSS-Protection":        "1; mode=block",
				"Referrer-Policy":         "strict-origin-when-cross-origin",
				"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
			}
			for h, v := range want {
				if got := rec.Header().Get(h); got != v {
					t.Errorf("%s = %q, want %q", h, got, v)
				}
			}
		})
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	specific := SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test", "http://b.test"}, AllowedMethods: []string{"POST"}}
	wildcard := SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}}

	tests := []struct {
		name       string
		config     SecurityConfig
		origin     string
		wantOrigin string
	}{
		{"disabled", SecurityConfig{EnableCORS: false}, "http://a.test", ""},
		{"wildcard", wildcard, "http://anything.test", "*"},
		{"wildcard without Origin", wildcard, "", "*"},
		{"first listed origin", specific, "http://a.test", "http://a.test"},
		{"second listed origin", specific, "http://b.test", "http://b.test"},
		{"unlisted origin", specific, "http://evil.test", ""},
		{"no Origin with specific list", specific, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveSecured(tt.config, "GET", tt.origin, func(http.ResponseWriter, *http.Request) {})

			h := rec.Header()
			if got := h.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin == "" {
				return
			}
			for _, name := range []string{"Access-Control-Allow-Methods", "Access-Control-Allow-Headers", "Access-Control-Max-Age"} {
				if h.Get(name) == "" {
					t.Errorf("%s should be set", name)
				}
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	called := false
	rec := serveSecured(DefaultSecurityConfig(), "OPTIONS", "http://a.test", func(http.ResponseWriter, *http.Request) { called = true })

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if called {
		t.Error("preflight must not reach the next handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight should carry CORS headers")
	}
}

func TestSecurityMiddleware_PassesResponseThrough(t *testing.T) {
	rec := serveSecured(DefaultSecurityConfig(), "GET", "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("from next"))
	})
	if rec.Code != http.StatusAccepted || rec.Body.String() != "from next" {
		t.Errorf("got %d %q, want 202 %q", rec.Code, rec.Body.String(), "from next")
	}
}

func TestSecurityMiddleware_BodyLimit(t *testing.T) {
	config := DefaultSecurityConfig()
	config.MaxBodyBytes = 8

	var readErr error
	req := httptest.NewRequest("POST", "/sum", strings.NewReader("0123456789abcdef"))
	SecurityMiddleware(config, func(_ http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	})(httptest.NewRecorder(), req)

	var tooLarge *http.MaxBytesError
	if !errors.As(readErr, &tooLarge) {
		t.Errorf("read error = %v, want *http.MaxBytesError", readErr)
	}
}
