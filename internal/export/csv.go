package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fjacquet/fatura-extractor/internal/currencyutils"
	"fjacquet/fatura-extractor/internal/models"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	Date        string `csv:"data"`
	Description string `csv:"descricao"`
	Amount      string `csv:"valor"`
	Category    string `csv:"categoria"`
	Bank        string `csv:"banco"`
}

// WriteCSV writes one row per transaction, with a header row even when the
// invoice has none.
func WriteCSV(w io.Writer, inv *models.Invoice, delimiter rune) error {
	rows := make([]csvRow, 0, len(inv.Transactions))
	for _, tx := range inv.Transactions {
		rows = append(rows, csvRow{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      currencyutils.FormatAmount(tx.Amount),
			Category:    tx.Category,
			Bank:        string(inv.BankID),
		})
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write CSV report: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
