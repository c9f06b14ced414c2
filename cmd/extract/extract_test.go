package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/fatura-extractor/internal/config"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/parsererror"
	"fjacquet/fatura-extractor/internal/pdftext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nubankText = "Nubank\nOlá, ANA LIMA\n01/06 UBER TRIP 23,90\n"

func newContainer(t *testing.T, text string) *container.Container {
	t.Helper()
	cfg := config.Defaults()
	cfg.Export.OutputDir = t.TempDir()
	c, err := container.NewContainer(context.Background(), cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithExtractor(pdftext.NewMockExtractor(text, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "extract", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("encoding"))
	assert.Equal(t, "b", Cmd.Flags().Lookup("bank").Shorthand)
}

func TestRunPDFToStdout(t *testing.T) {
	c := newContainer(t, nubankText)
	pdf := writeFile(t, "fatura.pdf", []byte("%PDF-1.7\n"))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, Options{Input: pdf}, &out))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "nubank", body["banco"])
	assert.Equal(t, "ANA LIMA", body["titular"])
}

func TestRunLatin1Text(t *testing.T) {
	c := newContainer(t, "")
	txt := writeFile(t, "fatura.txt", []byte("Nubank\nOl\xe1, ANA LIMA\n01/06 UBER TRIP 23,90\n"))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, Options{Input: txt, Encoding: "latin1"}, &out))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "ANA LIMA", body["titular"])
	assert.Empty(t, c.GetExtractor().(*pdftext.MockExtractor).Calls(), "text input skips PDF extraction")
}

func TestRunWritesReport(t *testing.T) {
	c := newContainer(t, nubankText)
	pdf := writeFile(t, "fatura.pdf", []byte("%PDF-1.7\n"))
	target := filepath.Join(t.TempDir(), "out.csv")

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, Options{Input: pdf, Format: "csv", Output: target}, &out))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "UBER TRIP")
	assert.Contains(t, out.String(), "23,90")
	assert.Contains(t, out.String(), target)
}

func TestRunExcelDefaultsToExportDir(t *testing.T) {
	c := newContainer(t, nubankText)
	pdf := writeFile(t, "fatura.pdf", []byte("%PDF-1.7\n"))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, Options{Input: pdf, Format: "excel"}, &out))

	matches, err := filepath.Glob(filepath.Join(c.GetConfig().Export.OutputDir, "fatura_report_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRunErrors(t *testing.T) {
	c := newContainer(t, nubankText)
	pdf := writeFile(t, "fatura.pdf", []byte("%PDF-1.7\n"))
	txt := writeFile(t, "fatura.txt", []byte("Nubank"))

	tests := []struct {
		name string
		opts Options
	}{
		{"unknown bank", Options{Input: pdf, Bank: "bancox"}},
		{"bad format", Options{Input: pdf, Format: "xml"}},
		{"missing pdf", Options{Input: filepath.Join(t.TempDir(), "none.pdf")}},
		{"missing text", Options{Input: filepath.Join(t.TempDir(), "none.txt")}},
		{"bad encoding", Options{Input: txt, Encoding: "klingon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(context.Background(), c, tt.opts, &bytes.Buffer{})
			require.Error(t, err)
			assert.True(t, parsererror.IsValidation(err), "got %v", err)
		})
	}
}
