package models

import (
	"errors"
	"fmt"
	"time"

	"fjacquet/fatura-extractor/internal/bank"

	"github.com/shopspring/decimal"
)

// InvoiceBuilder provides a fluent API for constructing invoices. The first
// error encountered is kept and reported by Build.
type InvoiceBuilder struct {
	inv Invoice
	err error
}

// NewInvoiceBuilder creates a builder for an invoice of an unknown issuer.
func NewInvoiceBuilder() *InvoiceBuilder {
	return &InvoiceBuilder{
		inv: Invoice{
			BankID:       bank.Generic,
			Transactions: []Transaction{},
		},
	}
}

// WithBank sets the issuer. An empty id keeps the generic issuer.
func (b *InvoiceBuilder) WithBank(id bank.ID) *InvoiceBuilder {
	if b.err != nil || id == "" {
		return b
	}
	b.inv.BankID = id
	return b
}

// WithCardholder sets the cardholder name.
func (b *InvoiceBuilder) WithCardholder(name string) *InvoiceBuilder {
	if b.err != nil {
		return b
	}
	b.inv.CardholderName = name
	return b
}

// WithCardNumber sets the masked card number exactly as printed.
func (b *InvoiceBuilder) WithCardNumber(number string) *InvoiceBuilder {
	if b.err != nil {
		return b
	}
	b.inv.MaskedCardNumber = number
	return b
}

// WithDates sets the closing and due dates.
func (b *InvoiceBuilder) WithDates(closing, due string) *InvoiceBuilder {
	if b.err != nil {
		return b
	}
	b.inv.ClosingDate = closing
	b.inv.DueDate = due
	return b
}

// WithDeclaredTotal sets the total as printed on the document.
func (b *InvoiceBuilder) WithDeclaredTotal(total string) *InvoiceBuilder {
	if b.err != nil {
		return b
	}
	b.inv.DeclaredTotal = total
	return b
}

// AddTransaction appends a transaction, keeping insertion order.
func (b *InvoiceBuilder) AddTransaction(tx Transaction) *InvoiceBuilder {
	if b.err != nil {
		return b
	}
	if err := tx.Validate(); err != nil {
		b.err = err
		return b
	}
	b.inv.Transactions = append(b.inv.Transactions, tx)
	return b
}

// WithProcessedAt stamps the processing time.
func (b *InvoiceBuilder) WithProcessedAt(at time.Time) *InvoiceBuilder {
	if b.err != nil {
		return b
	}
	if at.IsZero() {
		b.err = errors.New("processing time cannot be zero")
		return b
	}
	b.inv.ProcessedAt = at
	return b
}

// Build returns the invoice. When no total was declared it is computed from
// the transactions and formatted with two decimals.
func (b *InvoiceBuilder) Build() (Invoice, error) {
	if b.err != nil {
		return Invoice{}, b.err
	}
	inv := b.inv
	if inv.DeclaredTotal == "" {
		inv.DeclaredTotal = inv.Sum().StringFixed(2)
	}
	inv.Transactions = append([]Transaction{}, inv.Transactions...)
	return inv, nil
}

// Validate reports whether the transaction can be part of an invoice: it needs
// a description and a non-negative amount.
func (t Transaction) Validate() error {
	if t.Description == "" {
		return fmt.Errorf("transaction on %s has an empty description", t.Date)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction %q has a negative amount %s", t.Description, t.Amount)
	}
	return nil
}

// NewTransaction builds a transaction, rounding the amount to two decimals.
func NewTransaction(date, description string, amount decimal.Decimal, category string) Transaction {
	return Transaction{
		Date:        date,
		Description: description,
		Amount:      amount.Round(2),
		Category:    category,
	}
}
