package zoho

import "fmt"

// AuthError indicates a credential or token failure. It is fatal to the
// request that triggered it: the client performs no further retries.
type AuthError struct {
	// StatusCode is the HTTP status returned by the OAuth provider or the
	// API, 0 when the provider was unreachable.
	StatusCode int
	// Message is the provider's response body or a short description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("zoho auth error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("zoho auth error: %s", e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError carries a non-2xx upstream response. Status code and message
// body are passed through to the caller unchanged.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoho API error (status %d): %s", e.StatusCode, e.Body)
}

// TransportError indicates a network or timeout failure before any HTTP
// status was received.
type TransportError struct {
	// Op describes the failed operation (e.g. the resource path).
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zoho transport error (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
