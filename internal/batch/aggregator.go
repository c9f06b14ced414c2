package batch

import (
	"path/filepath"
	"sort"
	"time"

	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/dateutils"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"

	"github.com/shopspring/decimal"
)

// BankTotal aggregates the invoices of one issuer.
type BankTotal struct {
	Bank         bank.ID         `json:"banco"`
	Invoices     int             `json:"faturas"`
	Transactions int             `json:"transacoes"`
	Total        decimal.Decimal `json:"valor_total"`
	// FirstDue and LastDue bound the ISO due dates of the invoices, when
	// they could be read.
	FirstDue string `json:"primeiro_vencimento,omitempty"`
	LastDue  string `json:"ultimo_vencimento,omitempty"`
}

// FileError describes a file that could not be processed.
type FileError struct {
	File  string `json:"arquivo"`
	Error string `json:"erro"`
}

// Summary describes a whole batch run.
type Summary struct {
	ProcessID    string      `json:"process_id"`
	Files        int         `json:"arquivos"`
	Succeeded    int         `json:"sucesso"`
	Failed       int         `json:"falhas"`
	Transactions int         `json:"transacoes"`
	Duplicates   int         `json:"duplicadas"`
	ByBank       []BankTotal `json:"por_banco"`
	Errors       []FileError `json:"erros"`
}

// Aggregator summarises batch results.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{logger: logging.OrDefault(logger)}
}

type txKey struct {
	date, description string
	amount            string
}

// Summarize aggregates results per bank, sorted by bank id. Transactions
// that appear identically in more than one file are counted as duplicates
// and logged, but kept.
func (a *Aggregator) Summarize(processID string, results []Result) Summary {
	s := Summary{ProcessID: processID, Files: len(results), Errors: []FileError{}}
	byBank := make(map[bank.ID]*BankTotal)
	spans := make(map[bank.ID]*dateutils.Span)
	seen := make(map[txKey]string)

	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			s.Errors = append(s.Errors, FileError{File: filepath.Base(r.File), Error: r.Err.Error()})
			continue
		}
		s.Succeeded++

		inv := r.Invoice
		bt, ok := byBank[inv.BankID]
		if !ok {
			bt = &BankTotal{Bank: inv.BankID, Total: decimal.Zero}
			byBank[inv.BankID] = bt
			spans[inv.BankID] = &dateutils.Span{}
		}
		bt.Invoices++
		bt.Transactions += len(inv.Transactions)
		bt.Total = bt.Total.Add(inv.Sum())
		s.Transactions += len(inv.Transactions)

		due, _, dueErr := dateutils.ParseDate(inv.DueDate)
		if dueErr == nil {
			spans[inv.BankID].Add(due)
		}

		for _, tx := range inv.Transactions {
			k := txKey{transactionDate(tx, due, dueErr == nil), tx.Description, tx.Amount.StringFixed(2)}
			if first, dup := seen[k]; dup && first != r.File {
				s.Duplicates++
				a.logger.Debug("Transaction appears in several files",
					logging.F(logging.FieldFile, filepath.Base(r.File)),
					logging.F(logging.FieldDescription, tx.Description))
				continue
			}
			seen[k] = r.File
		}
	}

	s.ByBank = make([]BankTotal, 0, len(byBank))
	for id, bt := range byBank {
		if span := spans[id]; !span.IsZero() {
			bt.FirstDue = dateutils.ToISODate(span.First)
			bt.LastDue = dateutils.ToISODate(span.Last)
		}
		s.ByBank = append(s.ByBank, *bt)
	}
	sort.Slice(s.ByBank, func(i, j int) bool { return s.ByBank[i].Bank < s.ByBank[j].Bank })

	a.logger.Info("Batch summary",
		logging.F(logging.FieldProcessID, processID),
		logging.F(logging.FieldCount, s.Succeeded),
		logging.F(logging.FieldDropped, s.Failed))
	return s
}

// transactionDate anchors a DD/MM date to its invoice year when the due date
// is known, so the same day in different years is not a duplicate.
func transactionDate(tx models.Transaction, due time.Time, known bool) string {
	if !known {
		return tx.Date
	}
	t, err := dateutils.ParseDayMonth(tx.Date, due)
	if err != nil {
		return tx.Date
	}
	return dateutils.ToISODate(t)
}
