// Package parsererror defines the error taxonomy of a statement run: fatal
// startup errors, source-scoped errors and row-scoped rejections.
package parsererror

import (
	"errors"
	"fmt"
)

// Row rejection reasons. Match them with errors.Is.
var (
	ErrMalformedOrHeader = errors.New("malformed or header row")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrCreditNotExpense  = errors.New("credit, not an expense")
)

// Reasons lists every rejection reason in reporting order.
var Reasons = []error{
	ErrMalformedOrHeader,
	ErrInvalidAmount,
	ErrInvalidDate,
	ErrCreditNotExpense,
}

// ReasonCode returns a stable snake_case code for a rejection reason, or
// "unknown" if err carries none of them.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrMalformedOrHeader):
		return "malformed_or_header"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrCreditNotExpense):
		return "credit_not_expense"
	default:
		return "unknown"
	}
}

// ParseError represents a field that could not be parsed
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowRejectedError reports a row excluded from the output. Reason is one of
// the Err* sentinels; Err optionally carries the underlying cause.
type RowRejectedError struct {
	Source string
	Line   int
	Reason error
	Err    error
}

func (e *RowRejectedError) Error() string {
	loc := ""
	if e.Source != "" {
		loc = fmt.Sprintf(" (%s:%d)", e.Source, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("row rejected%s: %v: %v", loc, e.Reason, e.Err)
	}
	return fmt.Sprintf("row rejected%s: %v", loc, e.Reason)
}

func (e *RowRejectedError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// Reject builds a RowRejectedError without location; the caller reading the
// source fills Source and Line in.
func Reject(reason, cause error) *RowRejectedError {
	return &RowRejectedError{Reason: reason, Err: cause}
}

// SourceError reports an input source that could not be opened or read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unreadable: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// StartupError aborts a run before any row is processed.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed during %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an error where a file does not conform
// to the expected format.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string // Optional: a snippet of the actual content for debugging
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}
