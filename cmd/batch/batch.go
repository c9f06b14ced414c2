// Package batch handles batch processing of files
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/fatura-extractor/cmd/root"
	"fjacquet/fatura-extractor/internal/batch"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/export"
	"fjacquet/fatura-extractor/internal/fileutils"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// SummaryFile is written to the output directory after every run.
const SummaryFile = "summary.json"

// Options holds the batch flags.
type Options struct {
	InputDir  string
	OutputDir string
	Format    string
	Workers   int
}

var opts Options

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process invoices from a directory",
	Long: `Batch process every PDF in an input directory and write one report per
invoice to another directory, plus a summary.json with per-bank totals and the
files that failed. A failing file never stops the batch.

Example:
  fatura-extractor batch -i faturas/ -o reports/ -f excel --workers 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		summary, err := Run(cmd.Context(), c, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d/%d invoices extracted, %d transactions, summary in %s\n",
			summary.Succeeded, summary.Files, summary.Transactions, filepath.Join(opts.OutputDir, SummaryFile))
		return err
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "Input directory")
	Cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Output directory")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Report format: json, excel or csv (default from config)")
	Cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent workers (default: number of CPUs)")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("output")
}

// Run processes every PDF of opts.InputDir and writes the reports.
func Run(ctx context.Context, c *container.Container, opts Options) (batch.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.GetLogger()

	formatName := opts.Format
	if formatName == "" {
		formatName = c.GetConfig().Export.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return batch.Summary{}, err
	}

	if !fileutils.DirectoryExists(opts.InputDir) {
		return batch.Summary{}, fmt.Errorf("input directory does not exist: %s", opts.InputDir)
	}
	if err := fileutils.EnsureDirectoryExists(opts.OutputDir); err != nil {
		return batch.Summary{}, err
	}

	files, err := fileutils.ListFilesWithExtension(opts.InputDir, ".pdf")
	if err != nil {
		return batch.Summary{}, err
	}
	processID := uuid.NewString()
	if len(files) == 0 {
		logger.Warn("No PDF files found in input directory", logging.F(logging.FieldFile, opts.InputDir))
	}

	processor := batch.NewProcessor(opts.Workers, logger)
	logger.Info("Starting batch",
		logging.F(logging.FieldProcessID, processID),
		logging.F(logging.FieldCount, len(files)),
		logging.F(logging.FieldWorkers, processor.Workers()))

	results := processor.Process(ctx, files, func(ctx context.Context, path string) (*models.Invoice, error) {
		inv, err := c.ExtractPDF(ctx, path, "")
		if err != nil {
			return nil, err
		}
		if _, err := c.GetExporter().WriteFile(reportPath(opts.OutputDir, path, format), format, inv); err != nil {
			return nil, err
		}
		return inv, nil
	})

	summary := batch.NewAggregator(logger).Summarize(processID, results)
	if err := writeSummary(filepath.Join(opts.OutputDir, SummaryFile), summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// reportPath names a report after its source document.
func reportPath(dir, source string, f export.Format) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, base+f.Extension())
}

func writeSummary(path string, summary batch.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return fileutils.WriteFile(path, append(data, '\n'), 0600)
}

