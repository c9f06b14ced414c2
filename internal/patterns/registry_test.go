package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/fatura-extractor/internal/bank"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRegistry = `
version: "test-1"
banks:
  - id: nubank
    signatures: ['Nubank']
pattern_sets:
  generic:
    fields:
      titular: 'Nome:\s*(.*)'
      card_number: 'Cartão:\s*(\S+)'
      closing_date: 'Fechamento:\s*(\S+)'
      due_date: 'Vencimento:\s*(\S+)'
      total: 'Total:\s*(\S+)'
    transaction: '(\d{2}/\d{2}) (\D+) ([\d,]+)'
`

func TestDefaultRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, reg.Version())

	sigs := reg.Signatures()
	require.Len(t, sigs, 5)
	assert.Equal(t, bank.BancoDoBrasil, sigs[0].Bank)
	assert.Equal(t, bank.Santander, sigs[4].Bank)
	assert.Equal(t, bank.Known(), reg.Banks())

	assert.Equal(t, LineOriented, reg.For(bank.BancoDoBrasil).Strategy())
	assert.NotEmpty(t, reg.For(bank.BancoDoBrasil).SkipKeywords())
	assert.Equal(t, WholeText, reg.For(bank.Generic).Strategy())

	names := make([]string, 0)
	for _, c := range reg.Categories() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Supermercado", "Alimentação", "Saúde", "Transporte", "Entretenimento"}, names)
	assert.Contains(t, reg.Countries(), "BR")
	assert.Contains(t, reg.Cities(), "BRASILIA")
}

func TestForFallsBackToGeneric(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	generic := reg.For(bank.Generic)
	assert.Same(t, generic, reg.For(bank.Bradesco))
	assert.Same(t, generic, reg.For(bank.ID("unknown")))
	assert.Same(t, generic, reg.For(""))
	assert.NotSame(t, generic, reg.For(bank.Nubank))

	assert.True(t, reg.HasDedicated(bank.Itau))
	assert.False(t, reg.HasDedicated(bank.Santander))
	assert.False(t, reg.HasDedicated(bank.Generic))
}

func TestRawIsACopy(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	raw := reg.Raw(bank.Santander)
	assert.Equal(t, bank.Santander, raw.Requested)
	assert.Equal(t, bank.Generic, raw.Bank)
	assert.True(t, raw.Fallback)
	require.Contains(t, raw.Fields, "titular")

	raw.Fields["titular"] = "changed"
	raw.SkipKeywords = append(raw.SkipKeywords, "X")
	assert.NotEqual(t, "changed", reg.Raw(bank.Santander).Fields["titular"])

	bb := reg.Raw(bank.BancoDoBrasil)
	assert.False(t, bb.Fallback)
	bb.SkipKeywords[0] = "mutated"
	assert.NotEqual(t, "mutated", reg.For(bank.BancoDoBrasil).SkipKeywords()[0])

	overrides := reg.Overrides()
	require.NotEmpty(t, overrides)
	overrides[0].Replace = "mutated"
	assert.NotEqual(t, "mutated", reg.Overrides()[0].Replace)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			doc:     "version: [",
			wantErr: "failed to parse",
		},
		{
			name:    "missing version",
			doc:     "banks: []",
			wantErr: "no version",
		},
		{
			name:    "missing generic set",
			doc:     "version: x\npattern_sets: {}\n",
			wantErr: ErrNoPatternSet.Error(),
		},
		{
			name:    "unknown bank",
			doc:     "version: x\nbanks:\n  - id: caixa\n    signatures: ['CAIXA']\n",
			wantErr: "unknown bank id",
		},
		{
			name: "bad signature",
			doc: `version: x
banks:
  - id: nubank
    signatures: ['(']
`,
			wantErr: "invalid signature",
		},
		{
			name: "transaction pattern with wrong group count",
			doc: `version: x
pattern_sets:
  generic:
    fields: {titular: '(a)', card_number: '(a)', closing_date: '(a)', due_date: '(a)', total: '(a)'}
    transaction: '(\d+) (\w+)'
`,
			wantErr: "3 capture groups",
		},
		{
			name: "missing field",
			doc: `version: x
pattern_sets:
  generic:
    fields: {titular: '(a)'}
    transaction: '(a)(b)(c)'
`,
			wantErr: "missing field",
		},
		{
			name: "unknown strategy",
			doc: `version: x
pattern_sets:
  generic:
    strategy: columnar
    fields: {titular: '(a)', card_number: '(a)', closing_date: '(a)', due_date: '(a)', total: '(a)'}
    transaction: '(a)(b)(c)'
`,
			wantErr: "unknown strategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalRegistry), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", reg.Version())
	assert.Equal(t, WholeText, reg.For(bank.Nubank).Strategy())
	assert.Equal(t, []string{"Nubank"}, reg.SignatureSources(bank.Nubank))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
