package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/fatura-extractor/internal/bank"
)

// Strategy selects how transaction lines are found in the document text.
type Strategy string

const (
	// WholeText runs the transaction pattern repeatedly over the full text.
	WholeText Strategy = "whole_text"
	// LineOriented filters lines first and anchors the pattern to each line.
	LineOriented Strategy = "line_oriented"
)

// Field names one of the single-value invoice fields.
type Field string

const (
	FieldTitular     Field = "titular"
	FieldCardNumber  Field = "card_number"
	FieldClosingDate Field = "closing_date"
	FieldDueDate     Field = "due_date"
	FieldTotal       Field = "total"
)

// Fields lists every single-value field a pattern set must define.
var Fields = []Field{FieldTitular, FieldCardNumber, FieldClosingDate, FieldDueDate, FieldTotal}

// PatternSet bundles the compiled expressions for one issuer.
type PatternSet struct {
	bank         bank.ID
	strategy     Strategy
	fields       map[Field]*regexp.Regexp
	transaction  *regexp.Regexp
	skipKeywords []string
}

// RawPatternSet is the uncompiled, serializable view of a PatternSet.
type RawPatternSet struct {
	Requested    bank.ID           `json:"requested" yaml:"requested"`
	Bank         bank.ID           `json:"bank_id" yaml:"bank_id"`
	Fallback     bool              `json:"fallback" yaml:"fallback"`
	Strategy     Strategy          `json:"strategy" yaml:"strategy"`
	Fields       map[string]string `json:"fields" yaml:"fields"`
	Transaction  string            `json:"transaction" yaml:"transaction"`
	SkipKeywords []string          `json:"skip_keywords,omitempty" yaml:"skip_keywords,omitempty"`
}

func compileSet(id bank.ID, rs rawSet) (*PatternSet, error) {
	set := &PatternSet{
		bank:     id,
		strategy: rs.Strategy,
		fields:   make(map[Field]*regexp.Regexp, len(Fields)),
	}
	if set.strategy == "" {
		set.strategy = WholeText
	}
	if set.strategy != WholeText && set.strategy != LineOriented {
		return nil, fmt.Errorf("pattern set %s: unknown strategy %q", id, rs.Strategy)
	}

	for key := range rs.Fields {
		if !isField(Field(key)) {
			return nil, fmt.Errorf("pattern set %s: unknown field %q", id, key)
		}
	}
	for _, f := range Fields {
		expr, ok := rs.Fields[string(f)]
		if !ok {
			return nil, fmt.Errorf("pattern set %s: missing field %s", id, f)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("pattern set %s: field %s: %w", id, f, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("pattern set %s: field %s needs a capture group", id, f)
		}
		set.fields[f] = re
	}

	re, err := regexp.Compile(rs.Transaction)
	if err != nil {
		return nil, fmt.Errorf("pattern set %s: transaction: %w", id, err)
	}
	if re.NumSubexp() != 3 {
		return nil, fmt.Errorf("pattern set %s: transaction pattern needs 3 capture groups (date, description, amount), has %d", id, re.NumSubexp())
	}
	set.transaction = re

	for _, kw := range rs.SkipKeywords {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
			set.skipKeywords = append(set.skipKeywords, kw)
		}
	}
	return set, nil
}

func isField(f Field) bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Bank returns the issuer this set was registered for.
func (p *PatternSet) Bank() bank.ID { return p.bank }

// Strategy returns the transaction scanning strategy.
func (p *PatternSet) Strategy() Strategy { return p.strategy }

// Field returns the compiled pattern for f, or nil if f is not a known field.
// The returned expression is shared and must only be used for matching.
func (p *PatternSet) Field(f Field) *regexp.Regexp { return p.fields[f] }

// Transaction returns the compiled transaction pattern.
func (p *PatternSet) Transaction() *regexp.Regexp { return p.transaction }

// SkipKeywords returns the upper-cased line blacklist used by LineOriented scanning.
func (p *PatternSet) SkipKeywords() []string {
	return append([]string(nil), p.skipKeywords...)
}

func (p *PatternSet) raw() RawPatternSet {
	fields := make(map[string]string, len(p.fields))
	for f, re := range p.fields {
		fields[string(f)] = re.String()
	}
	return RawPatternSet{
		Bank:         p.bank,
		Strategy:     p.strategy,
		Fields:       fields,
		Transaction:  p.transaction.String(),
		SkipKeywords: p.SkipKeywords(),
	}
}
