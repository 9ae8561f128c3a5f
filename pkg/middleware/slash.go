package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash routes a path with one trailing slash as its canonical form, so
// /worksheets/ matches /worksheets for every method. The request is rewritten
// in place, keeping the mount prefix and body intact. "/" is left alone.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if len(path) <= 1 || !strings.HasSuffix(path, "/") || strings.HasSuffix(path, "//") {
				next.ServeHTTP(w, r)
				return
			}

			r2 := r.Clone(r.Context())
			r2.URL.Path = strings.TrimSuffix(path, "/")
			if r2.URL.RawPath != "" {
				r2.URL.RawPath = strings.TrimSuffix(r2.URL.RawPath, "/")
			}
			next.ServeHTTP(w, r2)
		})
	}
}
