package module_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/worksheet-lab/pkg/module"
)

func echoPath() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
}

func TestNew_InvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, echoPath())
		})
	}
}

func TestModule_Serve_StripsPrefix(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/worksheets", "/worksheets"},
		{"/api", "/"},
		{"/api/", "/"},
	}

	m := module.New("/api", echoPath())
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			m.Serve(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Body.String() != tt.want {
				t.Errorf("path = %q, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestModule_Use_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := module.New("/api", echoPath())
	m.Use(mark("outer"))
	m.Use(mark("inner"))

	m.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v, want outer,inner", order)
	}
}

func TestRouter_Dispatch(t *testing.T) {
	r := module.NewRouter()
	r.Mount(module.New("/api", echoPath()))
	r.HandleNative("GET /healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("OK"))
	})

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/api/worksheets/1", http.StatusOK, "/worksheets/1"},
		{"/healthz", http.StatusOK, "OK"},
		{"/apix", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
