// Package currencyutils converts between pt-BR amount strings and decimals.
package currencyutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned when an amount string has no digits to parse.
var ErrEmptyAmount = errors.New("empty amount")

var plainDecimal = regexp.MustCompile(`^\d+\.\d{2}$`)

// StripCurrency removes a leading "R$" marker and surrounding whitespace.
func StripCurrency(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	return strings.TrimSpace(s)
}

// StandardizeBRL turns a pt-BR amount ("1.234,56") into a decimal literal
// ("1234.56"): thousands dots are dropped and the decimal comma becomes a dot.
func StandardizeBRL(raw string) string {
	s := StripCurrency(raw)
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", ".")
}

// ParseBRL parses a pt-BR amount string, rounding the result to two decimals.
func ParseBRL(raw string) (decimal.Decimal, error) {
	s := StandardizeBRL(raw)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': exponent not allowed", raw)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	return amount.Round(2), nil
}

// ParseTotal parses a declared invoice total, which is either printed in
// pt-BR notation or was computed by the assembler as a plain decimal with two
// fraction digits.
func ParseTotal(raw string) (decimal.Decimal, error) {
	s := StripCurrency(raw)
	if plainDecimal.MatchString(s) {
		return decimal.RequireFromString(s), nil
	}
	return ParseBRL(s)
}

// FormatAmount renders amount with exactly two decimals and no separators.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatBRL renders amount in Brazilian real notation (R$ grapheme, dot
// thousands, comma decimals).
func FormatBRL(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	return money.New(cents, money.BRL).Display()
}

// ToFloat converts amount to a float64 for serialization targets that have
// no decimal type.
func ToFloat(amount decimal.Decimal) float64 {
	f, _ := amount.Round(2).Float64()
	return f
}
