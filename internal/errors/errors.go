package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrTypeNoRelevantTables means the question matched no catalog tables;
	// the user should rephrase, this is not a system fault.
	ErrTypeNoRelevantTables ErrorType = "no_relevant_tables"
	// ErrTypeCompletionUnavailable means the completion service is missing
	// credentials or unreachable before a call could be made.
	ErrTypeCompletionUnavailable ErrorType = "completion_unavailable"
	// ErrTypeCompletion means a completion call was made but failed.
	ErrTypeCompletion ErrorType = "completion_failed"
	// ErrTypeMalformedCompletion means the completion text carried no
	// extractable SQL fence.
	ErrTypeMalformedCompletion ErrorType = "malformed_completion"
	// ErrTypeQueryExecution means the warehouse rejected or failed the query.
	ErrTypeQueryExecution ErrorType = "query_execution"
	// ErrTypeVisualization means chart synthesis failed.
	ErrTypeVisualization ErrorType = "visualization"

	ErrTypeConfig     ErrorType = "config"
	ErrTypeValidation ErrorType = "validation"
	ErrTypeInternal   ErrorType = "internal"
)

// Error represents a structured error with type and optional suggestions.
// Detail carries technical context (driver messages, response bodies) that is
// logged but kept separate from the user-facing Message.
type Error struct {
	Type        ErrorType
	Message     string
	Detail      string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithDetail attaches technical detail to the error
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// GetDetail returns the technical detail if it's a structured error
func GetDetail(err error) string {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Detail
	}

	return ""
}

// NewNoRelevantTables creates the user-should-rephrase error with guidance
func NewNoRelevantTables(question string) *Error {
	return Newf(ErrTypeNoRelevantTables,
		"no relevant tables found in the schema to answer: %q", question).
		WithSuggestion("Rephrase your question using terms like sales, items, stores, or dates").
		WithSuggestion("Run 'sales-assistant tables' to see the available tables")
}

// NewCompletionUnavailable creates a missing-credentials error with guidance
func NewCompletionUnavailable(missing string) *Error {
	return Newf(ErrTypeCompletionUnavailable,
		"completion service is not configured (%s)", missing).
		WithSuggestion("Set AZURE_OPENAI_KEY, AZURE_OPENAI_ENDPOINT, and AZURE_OPENAI_DEPLOYMENT_NAME").
		WithSuggestion("A canned fallback query will be used so the pipeline can still run")
}
