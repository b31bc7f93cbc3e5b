package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "with cause",
			err:      NewParsingError("bad batch", cause),
			expected: "[PARSING] bad batch: boom",
		},
		{
			name:     "without cause",
			err:      NewValidationError("aux_pct out of range"),
			expected: "[VALIDATION] aux_pct out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewParsingError("bad batch", cause)

	assert.True(t, stderrors.Is(err, cause))

	wrapped := fmt.Errorf("outer: %w", err)
	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestToProblem(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedType   string
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest, "VALIDATION"},
		{"parsing", NewParsingError("bad", nil), http.StatusBadRequest, "PARSING"},
		{"not found", NewNotFoundError("batch"), http.StatusNotFound, "NOT_FOUND"},
		{"config", NewConfigError("bad", nil), http.StatusInternalServerError, "CONFIG"},
		{"unknown error opaque", stderrors.New("secret detail"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ToProblem(tt.err)
			assert.Equal(t, tt.expectedStatus, p.Status)
			assert.Equal(t, tt.expectedType, p.Type)
			if tt.expectedType == "INTERNAL" {
				assert.NotContains(t, p.Detail, "secret")
			}
		})
	}
}
