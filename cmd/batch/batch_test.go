package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/fatura-extractor/internal/batch"
	"fjacquet/fatura-extractor/internal/config"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/pdftext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nubankText = "Nubank\nOlá, ANA LIMA\n01/06 UBER TRIP 23,90\n"

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	c, err := container.NewContainer(context.Background(), config.Defaults(),
		container.WithLogger(logging.NewMockLogger()),
		container.WithExtractor(pdftext.NewMockExtractor(nubankText, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBatchCommand_CommandMetadata(t *testing.T) {
	assert.Equal(t, "batch", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Batch process")
	assert.Contains(t, Cmd.Long, "Example")
	assert.NotNil(t, Cmd.Flags().Lookup("workers"))
}

func TestRun(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "reports")
	for _, name := range []string{"jan.pdf", "fev.PDF", "mar.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte("%PDF-1.7\n"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.pdf"), []byte("not a pdf"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0600))

	summary, err := Run(context.Background(), newContainer(t), Options{InputDir: in, OutputDir: out, Format: "csv", Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Files)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "broken.pdf", summary.Errors[0].File)
	assert.Equal(t, 2, summary.Duplicates, "the same transaction in three files")

	for _, name := range []string{"jan.csv", "fev.csv", "mar.csv"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "broken.csv"))

	data, err := os.ReadFile(filepath.Join(out, SummaryFile))
	require.NoError(t, err)
	var written batch.Summary
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, summary.ProcessID, written.ProcessID)
	require.Len(t, written.ByBank, 1)
	assert.Equal(t, "nubank", string(written.ByBank[0].Bank))
}

func TestRunErrors(t *testing.T) {
	c := newContainer(t)

	_, err := Run(context.Background(), c, Options{InputDir: filepath.Join(t.TempDir(), "missing"), OutputDir: t.TempDir()})
	assert.Error(t, err)

	_, err = Run(context.Background(), c, Options{InputDir: t.TempDir(), OutputDir: t.TempDir(), Format: "xml"})
	assert.Error(t, err)
}

func TestRunEmptyDirectory(t *testing.T) {
	out := t.TempDir()
	summary, err := Run(context.Background(), newContainer(t), Options{InputDir: t.TempDir(), OutputDir: out})
	require.NoError(t, err)
	assert.Zero(t, summary.Files)
	assert.FileExists(t, filepath.Join(out, SummaryFile))
}
