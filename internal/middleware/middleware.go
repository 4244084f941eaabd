// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as
// request correlation, request logging, CORS, tracing, panic recovery and
// the translation of every returned error into a response.
package middleware
