// Package domain defines the value model, envelope, and errors for aggregation conversion.
package domain

import "fmt"

// UpstreamQueryError indicates the database shell reported a failed query.
// Output holds the upstream text verbatim.
type UpstreamQueryError struct {
	Output string
}

func (e *UpstreamQueryError) Error() string { return "upstream query failed" }

// MalformedInputError indicates input that could not be decoded as JSON.
type MalformedInputError struct {
	Message string
	Err     error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// SchemaMismatchError indicates a value that is not an aggregation envelope.
type SchemaMismatchError struct {
	Message string
}

func (e *SchemaMismatchError) Error() string { return e.Message }

// AggregationFailedError indicates an envelope whose ok flag is not 1.
type AggregationFailedError struct {
	OK Value
}

func (e *AggregationFailedError) Error() string {
	return fmt.Sprintf("aggregation ok flag was %s", e.OK.String())
}

// EmptyResultError indicates an envelope with no result documents.
type EmptyResultError struct{}

func (e *EmptyResultError) Error() string { return "aggregation returned no results" }

// NestedResultError indicates a result document holding a nested mapping
// or a nested list.
type NestedResultError struct {
	Index int
	Field string
}

func (e *NestedResultError) Error() string {
	return fmt.Sprintf("aggregation results are nested (document %d, field %q)", e.Index, e.Field)
}

// ErrMalformedInput creates a MalformedInputError wrapping cause.
func ErrMalformedInput(cause error, format string, args ...interface{}) *MalformedInputError {
	return &MalformedInputError{Message: fmt.Sprintf(format, args...), Err: cause}
}

// ErrSchemaMismatch creates a SchemaMismatchError with a formatted message.
func ErrSchemaMismatch(format string, args ...interface{}) *SchemaMismatchError {
	return &SchemaMismatchError{Message: fmt.Sprintf(format, args...)}
}
