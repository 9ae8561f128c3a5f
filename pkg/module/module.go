// Package module provides prefix-mounted HTTP modules with their own middleware chains.
package module

import (
	"net/http"
	"strings"
)

// Module is an isolated HTTP handler mounted under a single-segment prefix.
// Requests reach the handler with the prefix stripped from the path.
type Module struct {
	prefix     string
	handler    http.Handler
	middleware []func(http.Handler) http.Handler
	built      http.Handler
}

// New creates a module. It panics if prefix is not of the form "/name".
func New(prefix string, handler http.Handler) *Module {
	if err := validatePrefix(prefix); err != "" {
		panic("module: " + err + ": " + prefix)
	}
	return &Module{
		prefix:  prefix,
		handler: handler,
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Handler returns the module handler wrapped in its middleware chain.
func (m *Module) Handler() http.Handler {
	if m.built == nil {
		m.built = m.build()
	}
	return m.built
}

// Use appends middleware. The first middleware added is the outermost.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware = append(m.middleware, mw)
	m.built = nil
}

// Serve strips the module prefix and dispatches to the wrapped handler.
func (m *Module) Serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	req := r.Clone(r.Context())
	req.URL.Path = path
	if r.URL.RawPath != "" {
		req.URL.RawPath = strings.TrimPrefix(r.URL.RawPath, m.prefix)
		if req.URL.RawPath == "" {
			req.URL.RawPath = "/"
		}
	}

	m.Handler().ServeHTTP(w, req)
}

func (m *Module) build() http.Handler {
	h := m.handler
	for i := len(m.middleware) - 1; i >= 0; i-- {
		h = m.middleware[i](h)
	}
	return h
}

func validatePrefix(prefix string) string {
	if prefix == "" {
		return "empty prefix"
	}
	if !strings.HasPrefix(prefix, "/") {
		return "prefix must start with /"
	}
	if strings.Count(prefix, "/") > 1 {
		return "prefix must be a single path segment"
	}
	return ""
}
