// Package middleware holds the echo middleware shared by every route:
// request ids, request-scoped loggers, New Relic tracing, request logging,
// panic recovery, rate limiting, authentication and the global error
// handler.
package middleware
