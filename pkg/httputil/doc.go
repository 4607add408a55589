// Package httputil provides the JSON plumbing shared by the HTTP API handlers.
//
// # Overview
//
//   - [WriteJSON] and [WriteError]: consistent response bodies
//   - [StatusFor]: maps error codes from pkg/errors to HTTP status codes
//   - [DecodeJSON]: strict, size-limited request decoding followed by struct
//     tag validation with go-playground/validator
//   - [ClientIP]: the client address used for rate limiting
//
// # Errors
//
// Every error response has the same shape:
//
//	{"error": {"code": "INVALID_ITEM", "message": "invalid item id: \"Iron Plate\""}}
//
// Validation failures additionally carry per-field messages:
//
//	{"error": {"code": "INVALID_INPUT", "message": "invalid request", "fields": {"amount": "must be greater than 0"}}}
//
// Errors without a code are reported as INTERNAL_ERROR with a generic message
// so internal details never leak to clients.
package httputil
