// Package errs defines the error shapes returned to API clients.
//
// Every failure that reaches the client is an *HTTPError: a status code, a
// machine-friendly code (e.g. "CONFLICT", "USER_ALREADY_EXISTS"), a message,
// and optional field-level errors for payload validation.
package errs
