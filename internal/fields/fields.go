// Package fields pulls single-value invoice fields out of document text.
package fields

import (
	"regexp"
	"strings"

	"fjacquet/fatura-extractor/internal/patterns"
)

// Values holds the raw field strings found in a document. An empty string
// means the field was not found.
type Values struct {
	Titular     string
	CardNumber  string
	ClosingDate string
	DueDate     string
	Total       string
}

// Extract returns the first capture group of the first match of re in text,
// trimmed of surrounding whitespace. No coercion or validation is applied.
func Extract(text string, re *regexp.Regexp) (string, bool) {
	if re == nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractAll applies every field pattern of set to text.
func ExtractAll(text string, set *patterns.PatternSet) Values {
	get := func(f patterns.Field) string {
		v, _ := Extract(text, set.Field(f))
		return v
	}
	return Values{
		Titular:     get(patterns.FieldTitular),
		CardNumber:  get(patterns.FieldCardNumber),
		ClosingDate: get(patterns.FieldClosingDate),
		DueDate:     get(patterns.FieldDueDate),
		Total:       get(patterns.FieldTotal),
	}
}

// Missing returns the names of the fields that were not found, in registry field order.
func (v Values) Missing() []string {
	byField := map[patterns.Field]string{
		patterns.FieldTitular:     v.Titular,
		patterns.FieldCardNumber:  v.CardNumber,
		patterns.FieldClosingDate: v.ClosingDate,
		patterns.FieldDueDate:     v.DueDate,
		patterns.FieldTotal:       v.Total,
	}
	var missing []string
	for _, f := range patterns.Fields {
		if byField[f] == "" {
			missing = append(missing, string(f))
		}
	}
	return missing
}
