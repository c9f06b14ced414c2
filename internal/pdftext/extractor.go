// Package pdftext acquires the text layer of PDF invoices. Pages are joined
// with a form feed so the detector can restrict itself to the first pages.
package pdftext

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fjacquet/fatura-extractor/internal/parsererror"
)

// PageSeparator joins the text of consecutive pages.
const PageSeparator = "\f"

// Backend names a text extraction implementation.
type Backend string

const (
	// BackendPoppler shells out to pdftotext from poppler-utils.
	BackendPoppler Backend = "pdftotext"
	// BackendNative uses the pure Go ledongthuc/pdf reader.
	BackendNative Backend = "native"
	// BackendMuPDF uses MuPDF through go-fitz.
	BackendMuPDF Backend = "mupdf"
)

// Backends lists the supported backends.
func Backends() []Backend {
	return []Backend{BackendPoppler, BackendNative, BackendMuPDF}
}

// Extractor extracts the text of a PDF file. Implementations allow tests to
// substitute canned text for real documents.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// New returns the extractor for backend. An empty backend selects pdftotext.
func New(backend Backend) (Extractor, error) {
	switch backend {
	case BackendPoppler, "":
		return NewPopplerExtractor(), nil
	case BackendNative:
		return NewNativeExtractor(), nil
	case BackendMuPDF:
		return NewMuPDFExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", backend)
	}
}

// joinPages joins page texts and rejects documents without a text layer.
func joinPages(path string, pages []string) (string, error) {
	text := strings.Join(pages, PageSeparator)
	if strings.TrimSpace(strings.ReplaceAll(text, PageSeparator, "")) == "" {
		return "", noTextError(path)
	}
	return text, nil
}

func noTextError(path string) error {
	return &parsererror.InvalidFormatError{
		FilePath:       path,
		ExpectedFormat: "PDF with a text layer",
		Msg:            "no extractable text (scanned or image-only document)",
	}
}

// MockExtractor returns canned text, for tests. It is safe for concurrent use.
type MockExtractor struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls []string
}

// NewMockExtractor creates a MockExtractor.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{Text: text, Err: err}
}

// ExtractText returns the canned text or error.
func (m *MockExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return joinPages(path, []string{m.Text})
}

// Calls returns the paths passed to ExtractText, in call order.
func (m *MockExtractor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
