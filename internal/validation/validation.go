// Package validation contains the validating extractor: the stage that turns
// a raw request body into a decoded, structurally valid value before any
// handler logic runs.
//
// It uses the `validator` library to enforce rules (like required fields or
// email formats) defined in struct tags, collects every violation into a
// field -> message map, and converts failures into the fixed 400 response.
package validation
