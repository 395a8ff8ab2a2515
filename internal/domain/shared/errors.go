package shared

import "strings"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
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
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrPermissionDenied    = NewDomainError("PERMISSION_DENIED", "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ValidationError carries the full list of per-item messages that blocked
// a stage completion. Messages are surfaced to the caller verbatim.
type ValidationError struct {
	Messages []string `json:"messages"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewValidationError creates a validation error from a list of messages
func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: messages}
}
