// Package dberr handles datastore driver errors.
//
// It parses error codes from the MongoDB and PostgreSQL drivers and
// converts them into application errors with user-friendly messages
// (e.g. a duplicate key becomes a 409 "already exists").
package dberr
