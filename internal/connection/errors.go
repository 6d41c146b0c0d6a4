package connection

import (
	"fmt"
)

// ValidationError indicates connection inputs failed validation before any
// network activity. It is always terminal: the manager refuses to proceed
// with malformed inputs regardless of cache state.
type ValidationError struct {
	// Field names the offending input.
	Field string
	// Reason describes what is wrong with the value.
	Reason string
}

// Error returns a user-friendly description of the invalid input.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// AuthError indicates the token endpoint rejected the credential exchange
// or returned an unusable response.
type AuthError struct {
	// ProviderCode is the OAuth error code returned by the identity
	// provider (e.g. "invalid_client"). Empty when the failure was not a
	// provider response.
	ProviderCode string
	// Description is the human-readable failure detail, either the
	// provider's error_description or a local explanation.
	Description string
	// StatusCode is the HTTP status of the token response, 0 when no
	// response was received.
	StatusCode int
	// Reason is the underlying transport or decode error, if any.
	Reason error
}

// Error returns the failure including the provider's error text when the
// endpoint supplied one.
func (e *AuthError) Error() string {
	msg := "token acquisition failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.ProviderCode != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.ProviderCode)
	}
	if e.Description != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Description)
	}
	if e.Reason != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Reason)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthError) Is(target error) bool {
	_, ok := target.(*AuthError)
	return ok
}

// ValidationFailedError indicates a freshly acquired token did not grant
// access to the organization. It escalates the probe's non-terminating
// ValidationResult into a terminal error during Connect.
type ValidationFailedError struct {
	// Result is the probe outcome that caused the failure.
	Result *ValidationResult
}

// Error returns the probe's failure message.
func (e *ValidationFailedError) Error() string {
	if e.Result == nil {
		return "organization validation failed"
	}
	return fmt.Sprintf("organization validation failed: %s", e.Result.Message)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ValidationFailedError) Is(target error) bool {
	_, ok := target.(*ValidationFailedError)
	return ok
}

// StoreError indicates a session was rejected by the store's write
// validation.
type StoreError struct {
	// Reason describes why the session cannot be cached.
	Reason string
}

// Error returns the rejection reason.
func (e *StoreError) Error() string {
	return fmt.Sprintf("cannot cache session: %s", e.Reason)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)
	return ok
}
