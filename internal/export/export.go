// Package export renders extracted invoices as JSON, XLSX or CSV reports.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/fatura-extractor/internal/fileutils"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"
)

// Format is a report format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// ParseFormat accepts json, excel (or xlsx) and csv, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Extension returns the file extension, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return ".xlsx"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json"
	}
}

// ReportName returns the default report file name, fatura_report_YYYYMMDD_HHMMSS.ext.
func ReportName(f Format, now time.Time) string {
	return "fatura_report_" + now.Format("20060102_150405") + f.Extension()
}

// Exporter writes reports.
type Exporter struct {
	delimiter rune
	logger    logging.Logger
}

// New creates an Exporter. A zero delimiter means a comma.
func New(delimiter rune, logger logging.Logger) *Exporter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Exporter{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// Write renders inv to w.
func (e *Exporter) Write(w io.Writer, f Format, inv *models.Invoice) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, inv)
	case FormatExcel:
		return WriteExcel(w, inv)
	case FormatCSV:
		return WriteCSV(w, inv, e.delimiter)
	default:
		return fmt.Errorf("unsupported export format: %s", f)
	}
}

// WriteFile renders inv into path, creating parent directories. When path is
// a directory the default report name is used inside it. It returns the
// path written.
func (e *Exporter) WriteFile(path string, f Format, inv *models.Invoice) (string, error) {
	if path == "" || fileutils.DirectoryExists(path) || strings.HasSuffix(path, string(os.PathSeparator)) {
		path = filepath.Join(path, ReportName(f, time.Now()))
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return "", err
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) // #nosec G304 -- user-selected output
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	if err := e.Write(out, f, inv); err != nil {
		_ = out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}

	e.logger.Info("Report written",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldFormat, string(f)),
		logging.F(logging.FieldCount, len(inv.Transactions)))
	return path, nil
}
