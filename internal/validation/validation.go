// Package validation checks input documents and user supplied options before
// any extraction work is done.
package validation

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/fatura-extractor/internal/parsererror"
)

// DefaultMaxPDFSize is the largest accepted document, in bytes.
const DefaultMaxPDFSize int64 = 10 * 1024 * 1024

var pdfMagic = []byte("%PDF")

// IsValidPath checks that path exists and is a regular file or directory.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}
	return nil
}

// ValidatePDF checks the extension, size and magic bytes of the file at path.
// A non-positive maxSize means DefaultMaxPDFSize.
func ValidatePDF(path string, maxSize int64) error {
	if !HasPDFExtension(path) {
		return &parsererror.ValidationError{FilePath: path, Reason: "file extension must be .pdf"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &parsererror.ValidationError{FilePath: path, Reason: fmt.Sprintf("cannot stat file: %v", err)}
	}
	if info.IsDir() {
		return &parsererror.ValidationError{FilePath: path, Reason: "path is a directory"}
	}
	if err := CheckSize(path, info.Size(), maxSize); err != nil {
		return err
	}

	f, err := os.Open(path) // #nosec G304 -- path is the user-selected input document
	if err != nil {
		return &parsererror.ValidationError{FilePath: path, Reason: fmt.Sprintf("cannot open file: %v", err)}
	}
	defer f.Close()
	return CheckMagic(path, f)
}

// HasPDFExtension reports whether name ends in .pdf, ignoring case.
func HasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// CheckSize rejects empty documents and documents larger than maxSize.
func CheckSize(name string, size, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxPDFSize
	}
	if size == 0 {
		return &parsererror.ValidationError{FilePath: name, Reason: "file is empty"}
	}
	if size > maxSize {
		return &parsererror.ValidationError{
			FilePath: name,
			Reason:   fmt.Sprintf("file is %d bytes, larger than the %d byte limit", size, maxSize),
		}
	}
	return nil
}

// CheckMagic reads the first bytes of r and rejects anything that is not a PDF.
func CheckMagic(name string, r io.Reader) error {
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(r, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return &parsererror.ValidationError{FilePath: name, Reason: "file is not a PDF document"}
	}
	return nil
}

// IsValidExportFormat checks that format is a supported report format.
func IsValidExportFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "excel", "xlsx", "csv":
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s. Supported formats are 'json', 'excel', 'csv'", format)
	}
}
