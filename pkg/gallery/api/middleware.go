package api

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// CORSMiddleware answers preflight requests and allows every origin
func CORSMiddleware() Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// AllowAllOrigins sets Access-Control-Allow-Origin on every response,
// including requests that carry no Origin header.
func AllowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Access-Control-Allow-Origin") == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		next.ServeHTTP(w, r)
	})
}
