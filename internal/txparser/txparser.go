// Package txparser finds transaction lines in invoice text and converts them
// into transactions, keeping a per-line record of what was dropped and why.
package txparser

import (
	"errors"
	"regexp"
	"strings"

	"fjacquet/fatura-extractor/internal/currencyutils"
	"fjacquet/fatura-extractor/internal/models"
	"fjacquet/fatura-extractor/internal/normalizer"
	"fjacquet/fatura-extractor/internal/parsererror"
	"fjacquet/fatura-extractor/internal/patterns"

	"github.com/shopspring/decimal"
)

const parserName = "txparser"

var (
	errEmptyDescription = errors.New("description is empty after normalization")
	errNegativeAmount   = errors.New("amount is negative")

	leadingDate = regexp.MustCompile(`^\d{2}/\d{2}\b`)
)

// Outcome is the result of converting one candidate line. Exactly one of
// Transaction (when Err is nil) or Reason/Err is meaningful.
type Outcome struct {
	Line        int
	Raw         string
	Transaction models.Transaction
	Reason      string
	Err         error
}

// OK reports whether the candidate became a transaction.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result holds every candidate outcome in document order.
type Result struct {
	Outcomes []Outcome
	// Skipped counts lines the line-oriented strategy ignored before matching:
	// blacklisted lines and dated lines the anchored pattern rejected.
	Skipped int
}

// Transactions projects the successful outcomes, preserving order.
func (r Result) Transactions() []models.Transaction {
	out := make([]models.Transaction, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o.Transaction)
		}
	}
	return out
}

// Failures returns the dropped candidates.
func (r Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Parser converts candidate lines into transactions. It is safe for concurrent use.
type Parser struct {
	normalizer *normalizer.Normalizer
}

// New returns a Parser that cleans descriptions with n.
func New(n *normalizer.Normalizer) *Parser {
	return &Parser{normalizer: n}
}

type candidate struct {
	line        int
	raw         string
	date        string
	description string
	amount      string
}

// Parse scans text with the strategy of set and converts every candidate.
// A failing candidate never stops the scan.
func (p *Parser) Parse(text string, set *patterns.PatternSet) Result {
	var (
		cands   []candidate
		skipped int
	)
	switch set.Strategy() {
	case patterns.LineOriented:
		cands, skipped = scanLines(text, set)
	case patterns.WholeText:
		cands = scanWholeText(text, set)
	}

	res := Result{Outcomes: make([]Outcome, 0, len(cands)), Skipped: skipped}
	for _, c := range cands {
		res.Outcomes = append(res.Outcomes, p.convert(c))
	}
	return res
}

func (p *Parser) convert(c candidate) Outcome {
	out := Outcome{Line: c.line, Raw: c.raw}

	desc := p.normalizer.Normalize(c.description)
	if desc == "" {
		out.Reason = parsererror.ReasonEmptyDescription
		out.Err = &parsererror.ParseError{Parser: parserName, Field: "description", Value: c.description, Line: c.line, Err: errEmptyDescription}
		return out
	}

	amount, reason, err := ParseAmount(c.amount)
	if err != nil {
		out.Reason = reason
		out.Err = &parsererror.ParseError{Parser: parserName, Field: "amount", Value: c.amount, Line: c.line, Err: err}
		return out
	}

	out.Transaction = models.NewTransaction(c.date, desc, amount, "")
	return out
}

// ParseAmount converts a captured pt-BR amount. A sign may be separated from
// the digits by blanks ("- 50,00"). Negative amounts (credits and refunds)
// are rejected; the returned reason tells which rule failed.
func ParseAmount(raw string) (decimal.Decimal, string, error) {
	amount, err := currencyutils.ParseBRL(strings.Join(strings.Fields(raw), ""))
	if err != nil {
		return decimal.Zero, parsererror.ReasonInvalidAmount, err
	}
	if amount.IsNegative() {
		return decimal.Zero, parsererror.ReasonNegativeAmount, errNegativeAmount
	}
	return amount, "", nil
}

func scanWholeText(text string, set *patterns.PatternSet) []candidate {
	re := set.Transaction()
	matches := re.FindAllStringSubmatchIndex(text, -1)
	cands := make([]candidate, 0, len(matches))

	line, pos := 1, 0
	for _, m := range matches {
		line += strings.Count(text[pos:m[0]], "\n")
		pos = m[0]
		cands = append(cands, candidate{
			line:        line,
			raw:         text[m[0]:m[1]],
			date:        group(text, m, 1),
			description: group(text, m, 2),
			amount:      group(text, m, 3),
		})
	}
	return cands
}

// group returns capture group n of a submatch index, or "" when the group
// did not participate in the match.
func group(text string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

func scanLines(text string, set *patterns.PatternSet) ([]candidate, int) {
	re := set.Transaction()
	skip := set.SkipKeywords()

	var (
		cands   []candidate
		skipped int
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !leadingDate.MatchString(line) {
			continue
		}
		if containsAny(strings.ToUpper(line), skip) {
			skipped++
			continue
		}
		m := re.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		cands = append(cands, candidate{line: i + 1, raw: line, date: m[1], description: m[2], amount: m[3]})
	}
	return cands, skipped
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
