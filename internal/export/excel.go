package export

import (
	"fmt"
	"io"

	"fjacquet/fatura-extractor/internal/currencyutils"
	"fjacquet/fatura-extractor/internal/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX report.
const (
	SheetSummary      = "Resumo"
	SheetTransactions = "Transações"
	SheetCategories   = "Análise por Categoria"
)

const (
	notInformed    = "Não informado"
	noTransactions = "Nenhuma transação encontrada"
	brlNumFmt      = `"R$" #,##0.00`
)

// WriteExcel writes the three-sheet workbook for inv.
func WriteExcel(w io.Writer, inv *models.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetSummary, err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	numFmt := brlNumFmt
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}

	s := &sheetWriter{f: f, header: header, money: money}
	s.summary(inv)
	if len(inv.Transactions) == 0 {
		s.sheet(SheetTransactions)
		s.row(SheetTransactions, 1, true, "Mensagem")
		s.row(SheetTransactions, 2, false, noTransactions)
	} else {
		s.transactions(inv)
		s.categories(inv)
	}
	if s.err != nil {
		return s.err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XLSX report: %w", err)
	}
	return nil
}

// sheetWriter keeps the first excelize error so the layout code stays linear.
type sheetWriter struct {
	f      *excelize.File
	header int
	money  int
	err    error
}

func (s *sheetWriter) sheet(name string) {
	if s.err != nil {
		return
	}
	if _, err := s.f.NewSheet(name); err != nil {
		s.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
}

func (s *sheetWriter) row(sheet string, row int, bold bool, values ...interface{}) {
	for col, v := range values {
		if s.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			s.err = err
			return
		}
		if err := s.f.SetCellValue(sheet, cell, v); err != nil {
			s.err = fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			return
		}
		if bold {
			s.style(sheet, cell, s.header)
		}
	}
}

func (s *sheetWriter) style(sheet, cell string, style int) {
	if s.err != nil {
		return
	}
	if err := s.f.SetCellStyle(sheet, cell, cell, style); err != nil {
		s.err = err
	}
}

func (s *sheetWriter) width(sheet, col string, width float64) {
	if s.err != nil {
		return
	}
	if err := s.f.SetColWidth(sheet, col, col, width); err != nil {
		s.err = err
	}
}

func orNotInformed(v string) string {
	if v == "" {
		return notInformed
	}
	return v
}

func (s *sheetWriter) summary(inv *models.Invoice) {
	total := inv.DeclaredTotal
	if amount, err := currencyutils.ParseTotal(total); err == nil {
		total = currencyutils.FormatBRL(amount)
	}

	s.row(SheetSummary, 1, true, "Campo", "Valor")
	rows := [][2]string{
		{"Titular", orNotInformed(inv.CardholderName)},
		{"Número do Cartão", orNotInformed(inv.MaskedCardNumber)},
		{"Data de Fechamento", orNotInformed(inv.ClosingDate)},
		{"Data de Vencimento", orNotInformed(inv.DueDate)},
		{"Valor Total", orNotInformed(total)},
		{"Banco", inv.BankID.DisplayName()},
		{"Data de Processamento", inv.ProcessedAt.Format(models.ProcessedAtLayout)},
	}
	for i, r := range rows {
		s.row(SheetSummary, i+2, false, r[0], r[1])
	}
	s.width(SheetSummary, "A", 24)
	s.width(SheetSummary, "B", 32)
}

func (s *sheetWriter) transactions(inv *models.Invoice) {
	s.sheet(SheetTransactions)
	s.row(SheetTransactions, 1, true, "Data", "Descrição", "Valor", "Categoria")
	for i, tx := range inv.Transactions {
		row := i + 2
		s.row(SheetTransactions, row, false,
			tx.Date, tx.Description, currencyutils.ToFloat(tx.Amount), categoryOrDefault(tx.Category))
		s.style(SheetTransactions, fmt.Sprintf("C%d", row), s.money)
	}
	s.width(SheetTransactions, "B", 40)
	s.width(SheetTransactions, "C", 14)
	s.width(SheetTransactions, "D", 18)
}

func (s *sheetWriter) categories(inv *models.Invoice) {
	s.sheet(SheetCategories)
	s.row(SheetCategories, 1, true, "Categoria", "Valor Total", "Quantidade")
	for i, ct := range inv.CategoryTotals() {
		row := i + 2
		s.row(SheetCategories, row, false, ct.Category, currencyutils.ToFloat(ct.Total), ct.Count)
		s.style(SheetCategories, fmt.Sprintf("B%d", row), s.money)
	}
	s.width(SheetCategories, "A", 24)
	s.width(SheetCategories, "B", 16)
}

func categoryOrDefault(c string) string {
	if c == "" {
		return models.CategoryUncategorized
	}
	return c
}
