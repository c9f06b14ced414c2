package container

import (
	"context"
	"path/filepath"

	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"
	"fjacquet/fatura-extractor/internal/validation"
)

// ExtractPDF validates the PDF at path, acquires its text within the
// configured timeout and runs the engine. A non-empty override skips bank
// detection.
func (c *Container) ExtractPDF(ctx context.Context, path string, override bank.ID) (*models.Invoice, error) {
	if err := validation.ValidatePDF(path, c.config.MaxPDFBytes()); err != nil {
		return nil, err
	}

	text, err := c.extractText(ctx, path)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("PDF text acquired",
		logging.F(logging.FieldFile, filepath.Base(path)),
		logging.F(logging.FieldBackend, c.config.PDF.Backend),
		logging.F(logging.FieldCount, len(text)))
	return c.engine.Extract(ctx, text, override)
}

func (c *Container) extractText(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.PDFTimeout())
	defer cancel()
	return c.extractor.ExtractText(ctx, path)
}
