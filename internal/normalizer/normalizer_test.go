package normalizer

import (
	"testing"

	"fjacquet/fatura-extractor/internal/patterns"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	reg, err := patterns.Default()
	require.NoError(t, err)
	return New(reg)
}

func TestNormalize(t *testing.T) {
	n := defaultNormalizer(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"O PARK DESINGDF BRASILIA BR", "O PARK DESINGDF"},
		{"  SUPERMERCADO   XYZ  ", "SUPERMERCADO XYZ"},
		{"PADARIA REAL SAO PAULO BRA", "PADARIA REAL"},
		{"POSTO IPIRANGA RIO DE JANEIRO BRASIL", "POSTO IPIRANGA"},
		{"LOJA CENTRO Curitiba br", "LOJA CENTRO"},
		{"UBER *TRIP\tHELP.UBER.COM", "UBER *TRIP HELP.UBER.COM"},
		{"BRASILIA SHOPPING", "BRASILIA SHOPPING"},
		{"BRASILIA", ""},
		{"BR", ""},
		{"SAO PAULO BR", ""},
		{"Rio de Janeiro BRASIL", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNormalizeOverrides(t *testing.T) {
	n := defaultNormalizer(t)

	assert.Equal(t, "SUPERMERCADO BOM PRECO", n.Normalize("SUPERMERCAD0 BOM PRECO"))
	assert.Equal(t, "IFOOD BURGER", n.Normalize("IFD*BURGER BRASILIA BR"))
	assert.Equal(t, "MERCADOLIVRE", n.Normalize("MERCADOLIVRE*MERCADOLIV"))
}

func TestNormalizeOverrideOrder(t *testing.T) {
	n := NewWith(nil, nil, []patterns.Override{
		{Match: "AB", Replace: "X"},
		{Match: "XC", Replace: "Y"},
	})
	assert.Equal(t, "Y", n.Normalize("ABC"))
}

func TestNormalizeIsStable(t *testing.T) {
	n := defaultNormalizer(t)

	for _, raw := range []string{"O PARK DESINGDF BRASILIA BR", "IFD*PIZZA  SAO PAULO", "FARMACIA 123", "SAO PAULO BR"} {
		once := n.Normalize(raw)
		assert.Equal(t, once, n.Normalize(once), raw)
	}
}

func TestNormalizeKeepsMerchantName(t *testing.T) {
	n := defaultNormalizer(t)
	faker := gofakeit.New(7)
	for i := 0; i < 200; i++ {
		raw := faker.Company() + " " + faker.City() + " BR"
		got := n.Normalize(raw)
		assert.NotEmpty(t, got, raw)
		assert.Equal(t, got, n.Normalize(got), "normalizing twice changes nothing")
	}
}
