package pdftext

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// MuPDFExtractor reads the text layer with MuPDF.
type MuPDFExtractor struct{}

// NewMuPDFExtractor creates a MuPDFExtractor.
func NewMuPDFExtractor() *MuPDFExtractor {
	return &MuPDFExtractor{}
}

// ExtractText implements Extractor.
func (e *MuPDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return joinPages(path, pages)
}
