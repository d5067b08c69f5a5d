package middleware

import (
	"net/http"
	"strings"
)

// This API is browser-facing only through the configured frontend origins.
// The route surface uses GET, POST, PATCH and DELETE; PUT is not served.
const (
	corsMethods         = "GET, POST, PATCH, DELETE, OPTIONS"
	corsHeaders         = "Authorization, Content-Type, Accept"
	corsPreflightMaxAge = "600"
)

// CORS answers preflight requests and stamps allow headers for requests from
// a configured origin. Requests from unknown origins pass through without
// CORS headers; the browser, not the server, enforces the block.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := normalizeOrigins(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		_, ok := allowed[origin]

		if ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			if ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", corsPreflightMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// normalizeOrigins trims whitespace and trailing slashes so that a config
// value like "http://localhost:3000/" still matches the Origin header.
func normalizeOrigins(origins []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return allowed
}
