package dto

import "time"

// Response is the envelope of every JSON answer. Exactly one of Data and
// Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Retryable bool               `json:"retryable"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Meta describes a listed collection; RefreshedAt is when the catalog snapshot
// behind it was taken
type Meta struct {
	Total       int64      `json:"total"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

func NewSuccessResponseWithMeta(data any, total int64, refreshedAt time.Time) Response {
	meta := &Meta{Total: total}
	if !refreshedAt.IsZero() {
		meta.RefreshedAt = &refreshedAt
	}
	return Response{Success: true, Data: data, Meta: meta}
}

// NewErrorResponse builds a failure envelope; domain codes are translated to API codes
func NewErrorResponse(code, message string) Response {
	code = NormalizeErrorCode(code)
	return Response{
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			Retryable: IsRetryableCode(code),
			Timestamp: time.Now(),
		},
	}
}

// IDRequest binds the backend id path parameter
type IDRequest struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}
