package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/worksheet-lab/pkg/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		origin     string
		wantOrigin string
	}{
		{
			name:   "disabled",
			cfg:    middleware.CORSConfig{Enabled: false, Origins: []string{"http://localhost:3000"}},
			origin: "http://localhost:3000",
		},
		{
			name:   "no origins",
			cfg:    middleware.CORSConfig{Enabled: true},
			origin: "http://localhost:3000",
		},
		{
			name:       "allowed origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://localhost:3000", "https://worksheets.example.com"}},
			origin:     "https://worksheets.example.com",
			wantOrigin: "https://worksheets.example.com",
		},
		{
			name:   "disallowed origin",
			cfg:    middleware.CORSConfig{Enabled: true, Origins: []string{"http://localhost:3000"}},
			origin: "http://evil.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			middleware.CORS(&tt.cfg)(okHandler()).ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/worksheets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	middleware.CORS(cfg)(next).ServeHTTP(w, req)

	if called {
		t.Error("preflight should not reach next handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Access-Control-Max-Age = %q", got)
	}
}

func TestCORSConfig_Finalize_Defaults(t *testing.T) {
	cfg := &middleware.CORSConfig{}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(cfg.AllowedMethods) == 0 {
		t.Error("AllowedMethods should have defaults")
	}
	if len(cfg.AllowedHeaders) == 0 {
		t.Error("AllowedHeaders should have defaults")
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://localhost:3000, ,http://localhost:8080")
	t.Setenv("TEST_CORS_MAX_AGE", "90")

	cfg := &middleware.CORSConfig{}
	env := &middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
		MaxAge:  "TEST_CORS_MAX_AGE",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://localhost:8080" {
		t.Errorf("Origins = %v", cfg.Origins)
	}
	if cfg.MaxAge != 90 {
		t.Errorf("MaxAge = %d, want 90", cfg.MaxAge)
	}
}

func TestCORSConfig_Merge(t *testing.T) {
	base := &middleware.CORSConfig{Origins: []string{"http://a"}, MaxAge: 100}
	base.Merge(&middleware.CORSConfig{Enabled: true, Origins: []string{"http://b"}})

	if !base.Enabled {
		t.Error("Enabled not merged")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "http://b" {
		t.Errorf("Origins = %v, want [http://b]", base.Origins)
	}
	if base.MaxAge != 100 {
		t.Errorf("MaxAge = %d, want 100", base.MaxAge)
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, "/worksheets?grade=3", nil)
	w := httptest.NewRecorder()

	middleware.Logger(logger)(okHandler()).ServeHTTP(w, req)

	out := buf.String()
	for _, want := range []string{"request", "GET", "/worksheets?grade=3", "status=200", "duration"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestTrimSlash(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		wantPath string
	}{
		{"trims trailing slash", http.MethodGet, "/worksheets/", "/worksheets"},
		{"keeps query", http.MethodGet, "/worksheets/?grade=3", "/worksheets?grade=3"},
		{"upload", http.MethodPost, "/worksheets/upload/", "/worksheets/upload"},
		{"escaped segment", http.MethodDelete, "/worksheets/a%2Fb/", "/worksheets/a%2Fb"},
		{"root", http.MethodGet, "/", "/"},
		{"canonical", http.MethodGet, "/worksheets", "/worksheets"},
		{"double slash", http.MethodGet, "/worksheets//", "/worksheets//"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotBody string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.RequestURI()
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader("payload"))
			w := httptest.NewRecorder()

			middleware.TrimSlash()(next).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			if got := w.Header().Get("Location"); got != "" {
				t.Errorf("Location = %q, want no redirect", got)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotBody != "payload" {
				t.Errorf("body = %q, want payload", gotBody)
			}
		})
	}
}

func TestTrimSlash_MountedModule(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /worksheets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	h := http.StripPrefix("/api", middleware.TrimSlash()(mux))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/worksheets/", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}
}

func TestMetrics_PassesThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /worksheets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/worksheets/abc", nil)
	w := httptest.NewRecorder()

	middleware.Metrics()(mux).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}
}
