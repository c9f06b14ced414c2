// Package parsererror defines the typed errors raised while turning invoice
// documents into records.
package parsererror

import (
	"errors"
	"fmt"
)

// Line failure reasons reported by the transaction parser.
const (
	ReasonInvalidAmount    = "invalid_amount"
	ReasonNegativeAmount   = "negative_amount"
	ReasonEmptyDescription = "empty_description"
)

// ParseError describes one transaction line that could not be converted.
// It is always recoverable: the line is dropped and parsing continues.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: failed to parse %s='%s': %v",
			e.Parser, e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a document that cannot be used at all.
// It aborts the extraction.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// CategorizationError reports a categorization strategy failure.
type CategorizationError struct {
	Description string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %q using %s: %v",
		e.Description, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// InvalidFormatError reports a file that looked like a PDF but yielded no
// usable text.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
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

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidFormat reports whether err is or wraps an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	var fe *InvalidFormatError
	return errors.As(err, &fe)
}
