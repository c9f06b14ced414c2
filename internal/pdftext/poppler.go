package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PopplerExtractor runs `pdftotext -layout`, which already separates pages
// with form feeds.
type PopplerExtractor struct {
	// Binary defaults to "pdftotext" looked up in PATH.
	Binary string
}

// NewPopplerExtractor creates a PopplerExtractor.
func NewPopplerExtractor() *PopplerExtractor {
	return &PopplerExtractor{Binary: "pdftotext"}
}

// ExtractText implements Extractor.
func (e *PopplerExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return "", fmt.Errorf("pdftotext not available: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-layout", "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("error running pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages := strings.Split(strings.TrimSuffix(stdout.String(), PageSeparator), PageSeparator)
	return joinPages(path, pages)
}
