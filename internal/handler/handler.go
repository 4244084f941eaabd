// Package handler is the first layer after the router.
//
// Handlers receive already validated input (see Handle), do their work and
// return a response envelope; errors are left to the global error handler.
package handler
