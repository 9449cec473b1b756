// Package middleware provides the gin middleware shared by every route.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle client cleanup
//   - MaxBody: Request body cap backed by http.MaxBytesReader
//   - RequestLogger: One zap line per request, tagged with the trace ID
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
