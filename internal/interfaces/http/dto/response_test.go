package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"ITEM_NOT_FOUND", http.StatusNotFound},
		{"DOCUMENT_NOT_FOUND", http.StatusNotFound},
		{"PERMISSION_DENIED", http.StatusForbidden},
		{"VALIDATION_FAILED", http.StatusUnprocessableEntity},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"INVALID_CONTENT_TYPE", http.StatusBadRequest},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"TOKEN_EXPIRED", http.StatusGone},
		{"QUANTITY_EXCEEDED", http.StatusUnprocessableEntity},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		{"SOME_BUSINESS_RULE", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	messages := []string{"Item 1: Description is required", "Item 2: Unit is required"}
	resp := NewValidationErrorResponse(messages, "req-1")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, messages, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	assert.True(t, resp.Success)
	assert.EqualValues(t, 41, resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
