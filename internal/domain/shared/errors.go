package shared

import "errors"

// Error codes shared by the domain and the backend boundary
const (
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidState      = "INVALID_STATE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeTransient         = "TRANSIENT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code, so that
// errors.Is(err, shared.ErrNotFound) matches any not-found error regardless of message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict          = NewDomainError(CodeConflict, "Resource state conflicts with the request")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState      = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrTransient         = NewDomainError(CodeTransient, "Backend temporarily unavailable")
)

// CodeOf returns the DomainError code carried by err, or "" when err is not a domain error
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsRetryable reports whether the user may re-submit the same action.
// Transient failures can be re-submitted as they are; not-found failures only after
// the screen refreshed its cached catalog or order list. Conflicts and validation
// failures are final.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeTransient, CodeNotFound:
		return true
	}
	return false
}
