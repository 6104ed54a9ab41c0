package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// apiMethods are the verbs the REST routes answer to.
// PUT is the theme setting, PATCH edits list items and supermarkets.
var apiMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// exposedHeaders are response headers the web client reads:
// the export filename and the rate limiter's quota.
var exposedHeaders = []string{
	"Content-Disposition",
	"Retry-After",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
}

func corsOptions(allowedOrigins []string, isDevelopment bool) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   apiMethods,
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}
	// Browsers refuse credentials with a wildcard origin
	if isDevelopment {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return opts
}

// CORSMiddleware lets the configured web origins call the API.
// Outside development an empty origin list means same-origin only,
// since go-chi/cors would otherwise treat it as "*".
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	if !isDevelopment && len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(corsOptions(allowedOrigins, isDevelopment))
}

// DefaultMiddlewareStack returns the middleware applied to every route
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	}
}
