package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "with line number",
			err: &ParseError{
				Parser: "txparser",
				Field:  "amount",
				Value:  "1,2,3",
				Line:   7,
				Err:    errors.New("can't convert 1.2.3 to decimal"),
			},
			expected: "txparser: line 7: failed to parse amount='1,2,3': can't convert 1.2.3 to decimal",
		},
		{
			name: "without line number",
			err: &ParseError{
				Parser: "txparser",
				Field:  "description",
				Value:  "",
				Err:    errors.New("empty after normalization"),
			},
			expected: "txparser: failed to parse description='': empty after normalization",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	original := errors.New("original error")
	err := &ParseError{Parser: "txparser", Field: "amount", Value: "x", Err: original}

	assert.Equal(t, original, err.Unwrap())
	assert.True(t, errors.Is(err, original))
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "with file path",
			err:      &ValidationError{FilePath: "/tmp/fatura.pdf", Reason: "file exceeds 10 MB"},
			expected: "validation failed for /tmp/fatura.pdf: file exceeds 10 MB",
		},
		{
			name:     "in-memory text",
			err:      &ValidationError{Reason: "document text is empty"},
			expected: "validation failed: document text is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestCategorizationError(t *testing.T) {
	original := errors.New("quota exceeded")
	err := &CategorizationError{Description: "UBER TRIP", Strategy: "gemini", Err: original}

	assert.Equal(t, `categorization failed for "UBER TRIP" using gemini: quota exceeded`, err.Error())
	assert.True(t, errors.Is(err, original))
}

func TestInvalidFormatError(t *testing.T) {
	err := &InvalidFormatError{FilePath: "scan.pdf", ExpectedFormat: "PDF with a text layer", Msg: "no text extracted"}
	assert.Equal(t, "invalid format in file 'scan.pdf': no text extracted. Expected: PDF with a text layer", err.Error())

	err.ActualContentSnippet = "%PDF-1.4"
	assert.Contains(t, err.Error(), "Content snippet: '%PDF-1.4'")
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("extract: %w", &ValidationError{Reason: "empty"})
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsInvalidFormat(wrapped))

	wrapped = fmt.Errorf("pdf: %w", &InvalidFormatError{FilePath: "a.pdf"})
	assert.True(t, IsInvalidFormat(wrapped))
	assert.False(t, IsValidation(wrapped))
}
