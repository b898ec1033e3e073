package dto

import (
	"net/http"

	"github.com/petsupply/storefront/internal/domain/shared"
)

// API error codes. Every code the service emits is listed in codeTable.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"

	// ErrCodeTransient means the backend could not be reached; the same request
	// may be sent again
	ErrCodeTransient = "ERR_TRANSIENT"
)

type codeInfo struct {
	status int
	// retryable is set where re-sending can succeed without changing the
	// request: after an outage, or after the client refreshed a stale list
	retryable bool
}

var codeTable = map[string]codeInfo{
	ErrCodeInternal: {status: http.StatusInternalServerError},

	ErrCodeValidation:      {status: http.StatusBadRequest},
	ErrCodeBadRequest:      {status: http.StatusBadRequest},
	ErrCodeInvalidInput:    {status: http.StatusBadRequest},
	ErrCodeInvalidJSON:     {status: http.StatusBadRequest},
	ErrCodeRequestTooLarge: {status: http.StatusRequestEntityTooLarge},

	ErrCodeNotFound:          {status: http.StatusNotFound, retryable: true},
	ErrCodeConflict:          {status: http.StatusConflict},
	ErrCodeInvalidState:      {status: http.StatusUnprocessableEntity},
	ErrCodeInsufficientStock: {status: http.StatusUnprocessableEntity},

	ErrCodeTransient: {status: http.StatusServiceUnavailable, retryable: true},
}

// domainCodes maps shared.DomainError codes onto API codes
var domainCodes = map[string]string{
	shared.CodeNotFound:          ErrCodeNotFound,
	shared.CodeConflict:          ErrCodeConflict,
	shared.CodeInvalidInput:      ErrCodeInvalidInput,
	shared.CodeInvalidState:      ErrCodeInvalidState,
	shared.CodeInsufficientStock: ErrCodeInsufficientStock,
	shared.CodeTransient:         ErrCodeTransient,
}

// NormalizeErrorCode turns a domain code into its API code; API codes and
// unknown codes come back unchanged
func NormalizeErrorCode(code string) string {
	if api, ok := domainCodes[code]; ok {
		return api
	}
	return code
}

// GetHTTPStatus is the response status for an API code, 500 when unknown
func GetHTTPStatus(code string) int {
	if info, ok := codeTable[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// IsRetryableCode reports whether the client may re-send after code
func IsRetryableCode(code string) bool {
	return codeTable[code].retryable
}

// ValidationDetail is one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponseWithRequestID is NewErrorResponse tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse builds an ERR_VALIDATION envelope listing the rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
