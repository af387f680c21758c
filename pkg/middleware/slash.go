package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash returns middleware that redirects paths ending in one or more
// slashes to the same path without them. The root path "/" is preserved.
//
// GET and HEAD receive 301. Other methods receive 308 so the method and the
// multipart body of post uploads are replayed. OPTIONS passes through
// untouched because browsers reject redirected CORS preflights.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if len(path) <= 1 || !strings.HasSuffix(path, "/") || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			target := strings.TrimRight(path, "/")
			if target == "" {
				target = "/"
			}
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}

			status := http.StatusPermanentRedirect
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				status = http.StatusMovedPermanently
			}
			http.Redirect(w, r, target, status)
		})
	}
}
