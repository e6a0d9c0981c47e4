package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeValidation, "test error message")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "test error message", err.Message)
	assert.NoError(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeQueryExecution, "failed to run query against %s", "warehouse")

	assert.Equal(t, ErrTypeQueryExecution, err.Type)
	assert.Equal(t, "failed to run query against warehouse", err.Message)
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrap(originalErr, ErrTypeQueryExecution, "query execution failed")

	assert.Equal(t, ErrTypeQueryExecution, wrappedErr.Type)
	assert.Equal(t, "query execution failed", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
	assert.ErrorIs(t, wrappedErr, originalErr)
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrTypeValidation,
				Message: "invalid mode",
			},
			expected: "validation: invalid mode",
		},
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTypeCompletion,
				Message: "completion call failed",
				Cause:   errors.New("status 500"),
			},
			expected: "completion_failed: completion call failed (caused by: status 500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsType(t *testing.T) {
	err := New(ErrTypeNoRelevantTables, "nothing matched")

	assert.True(t, IsType(err, ErrTypeNoRelevantTables))
	assert.False(t, IsType(err, ErrTypeQueryExecution))
	assert.False(t, IsType(errors.New("plain"), ErrTypeNoRelevantTables))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeVisualization, GetType(New(ErrTypeVisualization, "no chart")))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrTypeQueryExecution, "query failed").
		WithDetail("AnalysisException: table not found: abacus_daily")

	assert.Equal(t, "query failed", err.Message)
	assert.Equal(t, "AnalysisException: table not found: abacus_daily", GetDetail(err))
	assert.Empty(t, GetDetail(errors.New("plain")))
}

func TestNewNoRelevantTables(t *testing.T) {
	err := NewNoRelevantTables("what is the meaning of life")

	assert.Equal(t, ErrTypeNoRelevantTables, err.Type)
	assert.Contains(t, err.Message, "what is the meaning of life")
	assert.Len(t, err.Suggestions, 2)
}

func TestNewCompletionUnavailable(t *testing.T) {
	err := NewCompletionUnavailable("AZURE_OPENAI_KEY is not set")

	assert.Equal(t, ErrTypeCompletionUnavailable, err.Type)
	assert.Contains(t, err.Message, "AZURE_OPENAI_KEY")
	assert.NotEmpty(t, err.Suggestions)
}
