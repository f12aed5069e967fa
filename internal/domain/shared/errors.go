package shared

import "errors"

// Error codes used across the storefront. Every failure that crosses a
// store or coordinator boundary carries one of these.
const (
	CodeFetch             = "FETCH_ERROR"
	CodeValidation        = "VALIDATION_ERROR"
	CodeApplication       = "APPLICATION_ERROR"
	CodeNetwork           = "NETWORK_ERROR"
	CodeStorage           = "STORAGE_ERROR"
	CodeStorageCorruption = "STORAGE_CORRUPTION"
	CodeCheckoutInFlight  = "CHECKOUT_IN_FLIGHT"
	CodeNotFound          = "NOT_FOUND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Payload is the raw server response body, when one was received.
	Payload []byte `json:"-"`

	cause error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil && e.Message == "" {
		return e.cause.Error()
	}
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers write errors.Is(err, shared.ErrNetwork) against any
// wrapped instance.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Sentinels for errors.Is comparisons
var (
	ErrFetch             = NewDomainError(CodeFetch, "Failed to load products")
	ErrValidation        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrApplication       = NewDomainError(CodeApplication, "Request rejected by server")
	ErrNetwork           = NewDomainError(CodeNetwork, "Network request failed")
	ErrStorage           = NewDomainError(CodeStorage, "Cart storage failed")
	ErrStorageCorruption = NewDomainError(CodeStorageCorruption, "Stored cart is unreadable")
	ErrCheckoutInFlight  = NewDomainError(CodeCheckoutInFlight, "A checkout is already in progress")
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
)

// NewFetchError reports a failed catalog or product load
func NewFetchError(cause error) *DomainError {
	return WrapDomainError(CodeFetch, "Failed to load products", cause)
}

// NewValidationError reports a local precondition failure
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewApplicationError reports a server-side rejection. reason is surfaced
// to the caller verbatim; payload is the raw response body.
func NewApplicationError(reason string, payload []byte) *DomainError {
	return &DomainError{
		Code:    CodeApplication,
		Message: reason,
		Payload: payload,
	}
}

// NewNetworkError reports a transport-level failure
func NewNetworkError(cause error) *DomainError {
	return WrapDomainError(CodeNetwork, "Network request failed", cause)
}

// NewStorageError reports a failure writing the persisted cart
func NewStorageError(cause error) *DomainError {
	return WrapDomainError(CodeStorage, "Cart storage failed", cause)
}

// Reason returns the human-facing message of a DomainError, or err.Error()
// for anything else
func Reason(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
