// Package dto defines the HTTP response envelope and the mapping from
// domain error codes to HTTP status codes.
package dto

import "net/http"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details. Details carries the full validation
// message list when the code is VALIDATION_FAILED.
type ErrorInfo struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates an error response carrying the full
// list of stage-completion validation messages
func NewValidationErrorResponse(messages []string, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidationFailed,
			Message:   "Stage completion validation failed",
			Details:   messages,
			RequestID: requestID,
		},
	}
}

// Error codes surfaced by the HTTP layer itself
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes missing from the map fall back by prefix/suffix convention in
// GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,

	"NOT_FOUND":         http.StatusNotFound,
	"PERMISSION_DENIED": http.StatusForbidden,

	ErrCodeValidationFailed: http.StatusUnprocessableEntity,
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"QUANTITY_EXCEEDED":     http.StatusUnprocessableEntity,

	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,

	// the warning-confirmation token was consumed or timed out
	"TOKEN_EXPIRED": http.StatusGone,

	"DOCUMENT_LIMIT_EXCEEDED": http.StatusUnprocessableEntity,
	"OBJECT_NOT_FOUND":        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unmapped INVALID_* codes are client input errors; unmapped *_NOT_FOUND
// codes are missing sub-resources; anything else is a business rule
// violation.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if len(code) > 8 && code[:8] == "INVALID_" {
		return http.StatusBadRequest
	}
	if len(code) > 10 && code[len(code)-10:] == "_NOT_FOUND" {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}
