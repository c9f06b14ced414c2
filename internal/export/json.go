package export

import (
	"encoding/json"
	"fmt"
	"io"

	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/currencyutils"
	"fjacquet/fatura-extractor/internal/models"
)

// TransactionDTO is the wire form of a transaction.
type TransactionDTO struct {
	Date        string  `json:"data"`
	Description string  `json:"descricao"`
	Amount      float64 `json:"valor"`
	Category    string  `json:"categoria,omitempty"`
}

// InvoiceDTO is the wire form of an invoice used by the JSON report and the
// HTTP API.
type InvoiceDTO struct {
	CardholderName   string           `json:"titular,omitempty"`
	MaskedCardNumber string           `json:"numero_cartao,omitempty"`
	ClosingDate      string           `json:"data_fechamento,omitempty"`
	DueDate          string           `json:"data_vencimento,omitempty"`
	DeclaredTotal    string           `json:"valor_total"`
	Bank             bank.ID          `json:"banco"`
	BankName         string           `json:"banco_nome"`
	Transactions     []TransactionDTO `json:"transacoes"`
	ProcessedAt      string           `json:"data_processamento"`
}

// NewInvoiceDTO converts inv.
func NewInvoiceDTO(inv *models.Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		CardholderName:   inv.CardholderName,
		MaskedCardNumber: inv.MaskedCardNumber,
		ClosingDate:      inv.ClosingDate,
		DueDate:          inv.DueDate,
		DeclaredTotal:    inv.DeclaredTotal,
		Bank:             inv.BankID,
		BankName:         inv.BankID.DisplayName(),
		Transactions:     make([]TransactionDTO, 0, len(inv.Transactions)),
		ProcessedAt:      inv.ProcessedAt.Format(models.ProcessedAtLayout),
	}
	for _, tx := range inv.Transactions {
		dto.Transactions = append(dto.Transactions, TransactionDTO{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      currencyutils.ToFloat(tx.Amount),
			Category:    tx.Category,
		})
	}
	return dto
}

// WriteJSON writes inv as indented JSON without HTML escaping.
func WriteJSON(w io.Writer, inv *models.Invoice) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewInvoiceDTO(inv)); err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}
