package pdftext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/fatura-extractor/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		backend Backend
		want    interface{}
	}{
		{"", &PopplerExtractor{}},
		{BackendPoppler, &PopplerExtractor{}},
		{BackendNative, &NativeExtractor{}},
		{BackendMuPDF, &MuPDFExtractor{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			ex, err := New(tt.backend)
			require.NoError(t, err)
			assert.IsType(t, tt.want, ex)
		})
	}

	_, err := New("tesseract")
	assert.Error(t, err)
	assert.Len(t, Backends(), 3)
}

func TestJoinPages(t *testing.T) {
	text, err := joinPages("a.pdf", []string{"page one", "page two"})
	require.NoError(t, err)
	assert.Equal(t, "page one\fpage two", text)

	_, err = joinPages("scan.pdf", []string{" ", "\n\n", ""})
	require.Error(t, err)
	assert.True(t, parsererror.IsInvalidFormat(err))
	assert.Contains(t, err.Error(), "scan.pdf")
}

func TestMockExtractor(t *testing.T) {
	m := NewMockExtractor("Nubank\n01/06 UBER 10,00", nil)
	text, err := m.ExtractText(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Nubank")
	assert.Equal(t, []string{"x.pdf"}, m.Calls())

	boom := errors.New("boom")
	_, err = NewMockExtractor("", boom).ExtractText(context.Background(), "x.pdf")
	assert.ErrorIs(t, err, boom)

	_, err = NewMockExtractor("   ", nil).ExtractText(context.Background(), "x.pdf")
	assert.True(t, parsererror.IsInvalidFormat(err))
}

func TestPopplerMissingBinary(t *testing.T) {
	e := &PopplerExtractor{Binary: "definitely-not-pdftotext"}
	_, err := e.ExtractText(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext not available")
}

func TestNativeRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0600))

	_, err := NewNativeExtractor().ExtractText(context.Background(), path)
	assert.Error(t, err)
}

func TestExtractorsKeepRows(t *testing.T) {
	rows := []string{
		"FATURA DO CARTAO",
		"01/06 SUPERMERCADO XYZ 150,00",
		"02/06 FARMACIA POPULAR 10,00",
	}

	tests := []struct {
		name string
		ex   Extractor
	}{
		{"native", NewNativeExtractor()},
		{"mupdf", NewMuPDFExtractor()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.ex.ExtractText(context.Background(), filepath.Join("testdata", "two_rows.pdf"))
			require.NoError(t, err)

			var lines []string
			for _, l := range strings.Split(text, "\n") {
				if l = strings.Join(strings.Fields(l), " "); l != "" {
					lines = append(lines, l)
				}
			}
			assert.Equal(t, rows, lines)
		})
	}
}

func TestNativeRowOrder(t *testing.T) {
	text, err := NewNativeExtractor().ExtractText(context.Background(), filepath.Join("testdata", "two_rows.pdf"))
	require.NoError(t, err)
	assert.Contains(t, text, "01/06 SUPERMERCADO XYZ 150,00\n02/06 FARMACIA POPULAR 10,00")
}

func TestNativeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNativeExtractor().ExtractText(ctx, filepath.Join("testdata", "two_rows.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
}
