// Package middleware provides reusable HTTP middleware for the Ieum planner API.
package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for the REST
// surface. Origins are compared after NormalizeOrigin, so a configured
// "https://ieum.app/" matches the browser's "https://ieum.app". An empty list
// allows no cross-origin callers.
// X-Request-Id is exposed so the web client can quote it in bug reports.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := NormalizeOrigins(allowedOrigins)
	c := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return len(allowed) > 0 && slices.Contains(allowed, NormalizeOrigin(origin))
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
	return c.Handler
}

// OriginAllowed reports whether origin is in allowed after normalisation.
// An empty allowed list accepts every origin; the sharing websocket uses it
// this way for same-host deployments.
func OriginAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(NormalizeOrigins(allowed), NormalizeOrigin(origin))
}

// NormalizeOrigin lowercases origin and strips trailing slashes.
func NormalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// NormalizeOrigins applies NormalizeOrigin to each entry, dropping blanks.
func NormalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if n := NormalizeOrigin(o); n != "" {
			out = append(out, n)
		}
	}
	return out
}
