package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"fjacquet/fatura-extractor/internal/assembler"
	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/categorizer"
	"fjacquet/fatura-extractor/internal/detector"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/normalizer"
	"fjacquet/fatura-extractor/internal/parsererror"
	"fjacquet/fatura-extractor/internal/patterns"
	"fjacquet/fatura-extractor/internal/txparser"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genericInvoice = `FATURA DO CARTÃO
Nome: JOÃO DA SILVA
Cartão: •••• 1234
Fechamento: 15/06/2025
Vencimento: 22/06/2025
01/06 SUPERMERCADO XYZ 150,00
`

const bbInvoice = `OUROCARD VISA INFINITE
Banco do Brasil
Cliente: MARIA SOUZA
SALDO FATURA ANTERIOR 1.000,00
27/05 O PARK DESINGDF BRASILIA BR R$ 159,90
28/05 FARMACIA POPULAR SAO PAULO BR 42,10
Total da fatura R$ 202,00
`

func newTestEngine(t *testing.T, clock assembler.Clock) (*Engine, *logging.MockLogger) {
	t.Helper()
	reg, err := patterns.Default()
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	e := New(
		reg,
		detector.New(reg, detector.Options{}),
		txparser.New(normalizer.New(reg)),
		categorizer.NewFromRegistry(reg, categorizer.Options{}, logger),
		assembler.New(clock),
		logger,
	)
	return e, logger
}

func TestExtractGenericInvoice(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	inv, err := e.Extract(context.Background(), genericInvoice, "")
	require.NoError(t, err)

	assert.Equal(t, bank.Generic, inv.BankID)
	assert.Equal(t, "JOÃO DA SILVA", inv.CardholderName)
	assert.Equal(t, "•••• 1234", inv.MaskedCardNumber)
	assert.Equal(t, "15/06/2025", inv.ClosingDate)
	assert.Equal(t, "22/06/2025", inv.DueDate)
	assert.Equal(t, "150.00", inv.DeclaredTotal)

	require.Len(t, inv.Transactions, 1)
	tx := inv.Transactions[0]
	assert.Equal(t, "01/06", tx.Date)
	assert.Equal(t, "SUPERMERCADO XYZ", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, "Supermercado", tx.Category)
}

func TestExtractBancoDoBrasil(t *testing.T) {
	e, logger := newTestEngine(t, nil)

	inv, err := e.Extract(context.Background(), bbInvoice, "")
	require.NoError(t, err)

	assert.Equal(t, bank.BancoDoBrasil, inv.BankID)
	assert.Equal(t, "MARIA SOUZA", inv.CardholderName)
	assert.Equal(t, "202,00", inv.DeclaredTotal)

	require.Len(t, inv.Transactions, 2)
	assert.Equal(t, "O PARK DESINGDF", inv.Transactions[0].Description)
	assert.True(t, inv.Transactions[0].Amount.Equal(decimal.RequireFromString("159.90")))
	assert.Equal(t, "FARMACIA POPULAR", inv.Transactions[1].Description)
	assert.Equal(t, "Saúde", inv.Transactions[1].Category)

	assert.False(t, logger.HasEntry("WARN", "Bank not detected, using generic patterns"))
}

func TestExtractUnrecognisedTextFallsBackToGeneric(t *testing.T) {
	e, logger := newTestEngine(t, nil)

	inv, err := e.Extract(context.Background(), "EXTRATO\n03/06 LOJA QUALQUER 10,00\n", "")
	require.NoError(t, err)

	assert.Equal(t, bank.Generic, inv.BankID)
	require.Len(t, inv.Transactions, 1)
	assert.Empty(t, inv.Transactions[0].Category)
	assert.Empty(t, inv.CardholderName)
	assert.True(t, logger.HasEntry("WARN", "Bank not detected, using generic patterns"))
}

func TestExtractOverride(t *testing.T) {
	e, logger := newTestEngine(t, nil)

	inv, err := e.Extract(context.Background(), genericInvoice, bank.Nubank)
	require.NoError(t, err)
	assert.Equal(t, bank.Nubank, inv.BankID)

	inv, err = e.Extract(context.Background(), genericInvoice, bank.ID("caixa"))
	require.NoError(t, err)
	assert.Equal(t, bank.Generic, inv.BankID)
	assert.True(t, logger.HasEntry("WARN", "Unknown bank override, using generic patterns"))
}

func TestExtractBankWithoutDedicatedSetKeepsID(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	inv, err := e.Extract(context.Background(), "Bradesco Cartões\n"+genericInvoice, "")
	require.NoError(t, err)
	assert.Equal(t, bank.Bradesco, inv.BankID)
	assert.Equal(t, "JOÃO DA SILVA", inv.CardholderName)
	assert.Len(t, inv.Transactions, 1)
}

func TestExtractMalformedAmountDropsOnlyThatLine(t *testing.T) {
	e, logger := newTestEngine(t, nil)

	text := "01/06 PADARIA 1,2,3\n02/06 MERCADO CENTRAL 45,00\n"
	inv, err := e.Extract(context.Background(), text, "")
	require.NoError(t, err)

	require.Len(t, inv.Transactions, 1)
	assert.Equal(t, "MERCADO CENTRAL", inv.Transactions[0].Description)

	warnings := logger.EntriesByLevel("WARN")
	var dropped []logging.LogEntry
	for _, w := range warnings {
		if w.Message == "Dropping transaction line" {
			dropped = append(dropped, w)
		}
	}
	require.Len(t, dropped, 1)
	reason, ok := dropped[0].FieldValue(logging.FieldReason)
	require.True(t, ok)
	assert.Equal(t, parsererror.ReasonInvalidAmount, reason)
	line, _ := dropped[0].FieldValue(logging.FieldLine)
	assert.Equal(t, 1, line)
}

func TestExtractIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	first, err := e.Extract(context.Background(), bbInvoice, "")
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), bbInvoice, "")
	require.NoError(t, err)

	second.ProcessedAt = first.ProcessedAt
	assert.Equal(t, first, second)
}

func TestExtractTotalFallsBackToSum(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	text := "01/06 MERCADO A 10,10\n02/06 MERCADO B 20,25\n03/06 TAXI C 1.000,00\n"
	inv, err := e.Extract(context.Background(), text, "")
	require.NoError(t, err)
	assert.Equal(t, "1030.35", inv.DeclaredTotal)
}

func TestExtractUsesInjectedClock(t *testing.T) {
	at := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	e, _ := newTestEngine(t, func() time.Time { return at })

	inv, err := e.Extract(context.Background(), genericInvoice, "")
	require.NoError(t, err)
	assert.Equal(t, at, inv.ProcessedAt)
}

func TestExtractRejectsUnusableText(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", " \n\t\f "},
		{"invalid utf8", "01/06 LOJA \xff\xfe 10,00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := e.Extract(context.Background(), tt.text, "")
			assert.Nil(t, inv)
			assert.True(t, parsererror.IsValidation(err))
		})
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Extract(ctx, genericInvoice, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractConcurrent(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := genericInvoice
			if i%2 == 0 {
				text = bbInvoice
			}
			inv, err := e.Extract(context.Background(), text, "")
			if err != nil {
				errs <- err
				return
			}
			if len(inv.Transactions) == 0 {
				errs <- assert.AnError
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestListAvailableBanks(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	banks := e.ListAvailableBanks()
	require.NotEmpty(t, banks)
	assert.Equal(t, bank.BancoDoBrasil, banks[0].ID)
	assert.NotEmpty(t, e.Registry().Version())
}
