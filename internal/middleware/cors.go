// Package middleware provides HTTP middleware for the FitCoach API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/ashureev/fitcoach/internal/identity"
)

var corsAllowHeaders = strings.Join([]string{"Content-Type", identity.SessionHeaderName}, ", ")

// CORS returns middleware that handles CORS headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			explicit := false
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
				}
				if o != "*" && o == origin {
					explicit = true
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Add("Vary", "Origin")
				// Credentials only for explicit origins. Echoing a wildcard
				// match with credentials enables CSRF.
				if explicit {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Origins splits a comma-separated origin list. An empty list allows any
// origin.
func Origins(list string) []string {
	var out []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
