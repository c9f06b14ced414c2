// Package models defines the invoice records produced by the extraction engine.
package models

import (
	"sort"
	"time"

	"fjacquet/fatura-extractor/internal/bank"

	"github.com/shopspring/decimal"
)

// Category names of the closed taxonomy.
const (
	CategorySupermarket   = "Supermercado"
	CategoryFood          = "Alimentação"
	CategoryHealth        = "Saúde"
	CategoryTransport     = "Transporte"
	CategoryEntertainment = "Entretenimento"

	// CategoryUncategorized is used only by reports, never stored on a Transaction.
	CategoryUncategorized = "Não Categorizado"
)

// ProcessedAtLayout is the timestamp layout used in exported reports.
const ProcessedAtLayout = "2006-01-02 15:04:05"

// Transaction is one dated line item of an invoice.
type Transaction struct {
	Date        string          `json:"data" yaml:"data" csv:"data"`
	Description string          `json:"descricao" yaml:"descricao" csv:"descricao"`
	Amount      decimal.Decimal `json:"valor" yaml:"valor" csv:"valor"`
	Category    string          `json:"categoria,omitempty" yaml:"categoria,omitempty" csv:"categoria"`
}

// IsCategorized reports whether a category was assigned.
func (t Transaction) IsCategorized() bool {
	return t.Category != ""
}

// Invoice is the structured record extracted from one document.
// Optional text fields are empty when not found.
type Invoice struct {
	CardholderName   string        `json:"titular,omitempty" yaml:"titular,omitempty"`
	MaskedCardNumber string        `json:"numero_cartao,omitempty" yaml:"numero_cartao,omitempty"`
	ClosingDate      string        `json:"data_fechamento,omitempty" yaml:"data_fechamento,omitempty"`
	DueDate          string        `json:"data_vencimento,omitempty" yaml:"data_vencimento,omitempty"`
	DeclaredTotal    string        `json:"valor_total" yaml:"valor_total"`
	BankID           bank.ID       `json:"banco" yaml:"banco"`
	Transactions     []Transaction `json:"transacoes" yaml:"transacoes"`
	ProcessedAt      time.Time     `json:"data_processamento" yaml:"data_processamento"`
}

// Sum returns the total of all transaction amounts.
func (inv *Invoice) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range inv.Transactions {
		total = total.Add(tx.Amount)
	}
	return total
}

// CategoryTotal aggregates the transactions of one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// CategoryTotals groups transactions by category, sorted by total descending
// and then by name. Uncategorized transactions are grouped under
// CategoryUncategorized.
func (inv *Invoice) CategoryTotals() []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, tx := range inv.Transactions {
		name := tx.Category
		if name == "" {
			name = CategoryUncategorized
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryTotal{Category: name, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
