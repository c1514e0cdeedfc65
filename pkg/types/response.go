// Package types holds the wire envelopes shared by every endpoint.
// Success payloads nest under "data", failures under "error", so
// clients can branch on the top-level key alone.
package types

// SuccessEnvelope wraps any successful response payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-visible error shape. Details is populated
// only for codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for transport.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
