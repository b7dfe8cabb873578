// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as authentication (via the session cookie), request
// logging, CORS, rate limiting, and panic recovery
package middleware
