// Package assembler combines detection, field and transaction results into
// the final invoice record.
package assembler

import (
	"time"

	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/fields"
	"fjacquet/fatura-extractor/internal/models"
)

// Clock returns the current time. Tests replace it to get stable timestamps.
type Clock func() time.Time

// Assembler builds invoices.
type Assembler struct {
	now Clock
}

// New returns an Assembler stamping invoices with now. A nil clock uses time.Now.
func New(now Clock) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now}
}

// Assemble builds the invoice. It is total: an empty bank id becomes
// bank.Generic, a missing declared total is replaced by the sum of the kept
// transaction amounts, transactions without a description or with a negative
// amount are left out and a zero clock reading falls back to time.Now.
func (a *Assembler) Assemble(id bank.ID, values fields.Values, txs []models.Transaction) models.Invoice {
	if id == "" {
		id = bank.Generic
	}
	at := a.now()
	if at.IsZero() {
		at = time.Now()
	}

	b := models.NewInvoiceBuilder().
		WithBank(id).
		WithCardholder(values.Titular).
		WithCardNumber(values.CardNumber).
		WithDates(values.ClosingDate, values.DueDate).
		WithDeclaredTotal(values.Total).
		WithProcessedAt(at)
	for _, tx := range txs {
		if tx.Validate() != nil {
			continue
		}
		b.AddTransaction(tx)
	}

	inv, err := b.Build()
	if err != nil {
		// Every builder rule is checked above.
		total := values.Total
		if total == "" {
			total = "0.00"
		}
		return models.Invoice{
			CardholderName:   values.Titular,
			MaskedCardNumber: values.CardNumber,
			ClosingDate:      values.ClosingDate,
			DueDate:          values.DueDate,
			DeclaredTotal:    total,
			BankID:           id,
			Transactions:     []models.Transaction{},
			ProcessedAt:      at,
		}
	}
	return inv
}
