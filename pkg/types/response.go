// Package types holds the JSON envelopes every API handler writes.
package types

// SuccessEnvelope wraps successful handler payloads under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire shape of a request failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
