package dataprocessing

import (
	"errors"
	"fmt"
)

// SourceMissingError indicates a required input source is absent or
// unreadable. It is fatal to the pipeline invocation: the dashboard cannot
// render without its date calendar.
type SourceMissingError struct {
	Source string
	Err    error
}

func (e *SourceMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s is missing or unreadable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source %s is missing or unreadable", e.Source)
}

func (e *SourceMissingError) Unwrap() error { return e.Err }

// EmptyResultError indicates a source was readable but produced zero usable
// rows (no data rows, or every row rejected). It is distinct from
// SourceMissingError so the UI can show "no data for range" instead of a
// missing-file error.
type EmptyResultError struct {
	Source string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("source %s contains no usable rows", e.Source)
}

// IsSourceMissing reports whether err wraps a SourceMissingError.
func IsSourceMissing(err error) bool {
	var target *SourceMissingError
	return errors.As(err, &target)
}

// IsEmptyResult reports whether err wraps an EmptyResultError.
func IsEmptyResult(err error) bool {
	var target *EmptyResultError
	return errors.As(err, &target)
}
