// Package extract implements the single-document extract command.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/fatura-extractor/cmd/root"
	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/currencyutils"
	"fjacquet/fatura-extractor/internal/export"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"
	"fjacquet/fatura-extractor/internal/parsererror"

	"github.com/spf13/cobra"
	"golang.org/x/net/html/charset"
)

// Options holds the extract flags.
type Options struct {
	Input    string
	Output   string
	Bank     string
	Format   string
	Encoding string
}

var opts Options

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one invoice from a PDF or a text file",
	Long: `Extract the invoice data from a single PDF, or from text already extracted
from one (.txt). The bank is detected from the text unless --bank is given.

Without --output, JSON is printed to stdout. Excel and CSV reports are written
to --output, or to the configured export directory.

Example:
  fatura-extractor extract -i fatura.pdf
  fatura-extractor extract -i fatura.pdf -f excel -o reports/
  fatura-extractor extract -i fatura.txt --encoding latin1 -b itau`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Input PDF or text file")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file or directory")
	Cmd.Flags().StringVarP(&opts.Bank, "bank", "b", "", "Bank id, skips detection ("+strings.Join(bankIDs(), ", ")+")")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: json, excel or csv (default from config)")
	Cmd.Flags().StringVar(&opts.Encoding, "encoding", "utf-8", "Encoding of a text input, e.g. latin1 or windows-1252")
	_ = Cmd.MarkFlagRequired("input")
}

func bankIDs() []string {
	ids := []string{string(bank.Generic)}
	for _, id := range bank.Known() {
		ids = append(ids, string(id))
	}
	return ids
}

// Run extracts opts.Input and writes the result.
func Run(ctx context.Context, c *container.Container, opts Options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := c.GetLogger()

	format, err := export.ParseFormat(firstNonEmpty(opts.Format, c.GetConfig().Export.Format))
	if err != nil {
		return err
	}

	var override bank.ID
	if opts.Bank != "" {
		id, ok := bank.Parse(opts.Bank)
		if !ok {
			return &parsererror.ValidationError{Reason: fmt.Sprintf("unknown bank %q, expected one of %s", opts.Bank, strings.Join(bankIDs(), ", "))}
		}
		override = id
	}

	inv, err := extract(ctx, c, opts, override)
	if err != nil {
		return err
	}

	log.Info("Extraction finished",
		logging.F(logging.FieldFile, opts.Input),
		logging.F(logging.FieldBank, inv.BankID),
		logging.F(logging.FieldCount, len(inv.Transactions)),
		logging.F("sum", currencyutils.FormatBRL(inv.Sum())))

	if opts.Output == "" && format == export.FormatJSON {
		return export.WriteJSON(out, inv)
	}

	target := opts.Output
	if target == "" {
		target = c.GetConfig().Export.OutputDir
	}
	path, err := c.GetExporter().WriteFile(target, format, inv)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %d transactions, %s -> %s\n",
		inv.BankID.DisplayName(), len(inv.Transactions), currencyutils.FormatBRL(inv.Sum()), path)
	return err
}

func extract(ctx context.Context, c *container.Container, opts Options, override bank.ID) (*models.Invoice, error) {
	if !strings.EqualFold(filepath.Ext(opts.Input), ".txt") {
		return c.ExtractPDF(ctx, opts.Input, override)
	}
	text, err := readText(opts.Input, opts.Encoding)
	if err != nil {
		return nil, err
	}
	return c.GetEngine().Extract(ctx, text, override)
}

// readText decodes a text file from the named encoding into UTF-8.
func readText(path, encoding string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &parsererror.ValidationError{FilePath: path, Reason: err.Error()}
	}
	defer f.Close()

	r, err := charset.NewReaderLabel(firstNonEmpty(encoding, "utf-8"), f)
	if err != nil {
		return "", &parsererror.ValidationError{FilePath: path, Reason: fmt.Sprintf("unsupported encoding %q", encoding)}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
