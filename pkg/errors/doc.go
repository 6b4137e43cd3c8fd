// Package errors defines the structured error type shared by keyfactory's
// runtime and generator. Every error carries a stable ErrorCode so callers
// and tests can match on the category instead of the message text.
package errors
