// Package detector identifies the issuing bank of an invoice from its text.
package detector

import (
	"strings"

	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/patterns"
)

// PageSeparator separates pages in text produced by the pdftext extractors.
const PageSeparator = "\f"

const (
	DefaultMaxPages = 2
	DefaultMaxBytes = 64 * 1024
)

// Options bounds how much of a document is scanned.
type Options struct {
	// MaxPages is the number of leading pages inspected. Zero or less means DefaultMaxPages.
	MaxPages int
	// MaxBytes caps the inspected prefix. Zero or less means DefaultMaxBytes.
	MaxBytes int
}

// BankInfo describes a supported issuer.
type BankInfo struct {
	ID          bank.ID `json:"id"`
	DisplayName string  `json:"name"`
}

// Detector matches document text against the registry signatures.
// It is safe for concurrent use.
type Detector struct {
	signatures []patterns.Signature
	maxPages   int
	maxBytes   int
}

// New builds a Detector over the signatures of reg.
func New(reg *patterns.Registry, opts Options) *Detector {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Detector{
		signatures: reg.Signatures(),
		maxPages:   opts.MaxPages,
		maxBytes:   opts.MaxBytes,
	}
}

// Detect returns the first bank, in registry order, for which any signature
// matches the scanned prefix of text. The boolean is false when no bank matches.
func (d *Detector) Detect(text string) (bank.ID, bool) {
	prefix := d.prefix(text)
	for _, sig := range d.signatures {
		for _, re := range sig.Patterns {
			if re.MatchString(prefix) {
				return sig.Bank, true
			}
		}
	}
	return "", false
}

// ListAvailableBanks returns the detectable banks in detection order.
func (d *Detector) ListAvailableBanks() []BankInfo {
	out := make([]BankInfo, 0, len(d.signatures))
	for _, sig := range d.signatures {
		out = append(out, BankInfo{ID: sig.Bank, DisplayName: sig.Name})
	}
	return out
}

// prefix keeps the first maxPages pages, then trims to maxBytes without
// splitting a UTF-8 sequence.
func (d *Detector) prefix(text string) string {
	pages := strings.SplitN(text, PageSeparator, d.maxPages+1)
	if len(pages) > d.maxPages {
		pages = pages[:d.maxPages]
	}
	out := strings.Join(pages, "\n")
	if len(out) <= d.maxBytes {
		return out
	}
	cut := d.maxBytes
	for cut > 0 && !isRuneStart(out[cut]) {
		cut--
	}
	return out[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
