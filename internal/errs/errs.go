// Package errs defines the application's error types.
//
// Handlers and lower layers return these so the global error handler
// can translate them into a response envelope with a meaningful status
// and message, instead of leaking driver or framework internals.
package errs
