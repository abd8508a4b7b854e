// Package validation binds and validates request payloads.
//
// Rules live in `validate` struct tags (go-playground/validator) plus an
// optional Validate method for anything tags cannot express. Failures are
// turned into 400 responses with one entry per offending field.
package validation
