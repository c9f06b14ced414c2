package models

import (
	"testing"
	"time"

	"fjacquet/fatura-extractor/internal/bank"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceBuilder(t *testing.T) {
	at := time.Date(2025, 6, 20, 10, 30, 0, 0, time.UTC)

	inv, err := NewInvoiceBuilder().
		WithBank(bank.Nubank).
		WithCardholder("JOÃO DA SILVA").
		WithCardNumber("•••• 1234").
		WithDates("15/06/2025", "22/06/2025").
		AddTransaction(NewTransaction("01/06", "SUPERMERCADO XYZ", dec("150"), CategorySupermarket)).
		AddTransaction(NewTransaction("05/06", "LIVRARIA", dec("20.456"), "")).
		WithProcessedAt(at).
		Build()
	require.NoError(t, err)

	assert.Equal(t, bank.Nubank, inv.BankID)
	assert.Equal(t, "JOÃO DA SILVA", inv.CardholderName)
	assert.Equal(t, "•••• 1234", inv.MaskedCardNumber)
	assert.Equal(t, "15/06/2025", inv.ClosingDate)
	assert.Equal(t, "22/06/2025", inv.DueDate)
	assert.Equal(t, "170.46", inv.DeclaredTotal)
	assert.Equal(t, at, inv.ProcessedAt)
	require.Len(t, inv.Transactions, 2)
	assert.Equal(t, "SUPERMERCADO XYZ", inv.Transactions[0].Description)
	assert.True(t, inv.Transactions[1].Amount.Equal(dec("20.46")))
}

func TestInvoiceBuilderKeepsDeclaredTotal(t *testing.T) {
	inv, err := NewInvoiceBuilder().
		WithDeclaredTotal("1.234,56").
		AddTransaction(NewTransaction("01/06", "A", dec("1"), "")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "1.234,56", inv.DeclaredTotal)
	assert.Equal(t, bank.Generic, inv.BankID)
}

func TestInvoiceBuilderEmpty(t *testing.T) {
	inv, err := NewInvoiceBuilder().WithBank("").Build()
	require.NoError(t, err)
	assert.Equal(t, "0.00", inv.DeclaredTotal)
	assert.Equal(t, bank.Generic, inv.BankID)
	assert.NotNil(t, inv.Transactions)
	assert.Empty(t, inv.Transactions)
}

func TestInvoiceBuilderErrors(t *testing.T) {
	_, err := NewInvoiceBuilder().AddTransaction(NewTransaction("01/06", "", dec("1"), "")).Build()
	assert.Error(t, err)

	_, err = NewInvoiceBuilder().AddTransaction(NewTransaction("01/06", "ESTORNO", dec("-1"), "")).Build()
	assert.Error(t, err)

	_, err = NewInvoiceBuilder().WithProcessedAt(time.Time{}).WithCardholder("x").Build()
	assert.Error(t, err)
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{"valid", NewTransaction("01/06", "PADARIA", dec("5"), ""), false},
		{"zero amount", NewTransaction("01/06", "TARIFA", dec("0"), ""), false},
		{"empty description", NewTransaction("01/06", "", dec("5"), ""), true},
		{"negative amount", NewTransaction("01/06", "ESTORNO", dec("-5"), ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCategoryTotals(t *testing.T) {
	inv := Invoice{Transactions: []Transaction{
		{Description: "A", Amount: dec("10"), Category: CategoryFood},
		{Description: "B", Amount: dec("50"), Category: CategorySupermarket},
		{Description: "C", Amount: dec("15"), Category: CategoryFood},
		{Description: "D", Amount: dec("5")},
	}}

	totals := inv.CategoryTotals()
	require.Len(t, totals, 3)
	assert.Equal(t, CategorySupermarket, totals[0].Category)
	assert.Equal(t, CategoryFood, totals[1].Category)
	assert.True(t, totals[1].Total.Equal(dec("25")))
	assert.Equal(t, 2, totals[1].Count)
	assert.Equal(t, CategoryUncategorized, totals[2].Category)
	assert.True(t, inv.Sum().Equal(dec("80")))
}
