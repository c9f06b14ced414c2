// Package engine runs the full text-to-invoice pipeline: bank detection,
// header field extraction, transaction parsing, categorization and assembly.
package engine

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"fjacquet/fatura-extractor/internal/assembler"
	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/categorizer"
	"fjacquet/fatura-extractor/internal/detector"
	"fjacquet/fatura-extractor/internal/fields"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"
	"fjacquet/fatura-extractor/internal/parsererror"
	"fjacquet/fatura-extractor/internal/patterns"
	"fjacquet/fatura-extractor/internal/txparser"
)

// Engine is safe for concurrent use; every collaborator is read-only after
// construction.
type Engine struct {
	registry    *patterns.Registry
	detector    *detector.Detector
	parser      *txparser.Parser
	categorizer *categorizer.Categorizer
	assembler   *assembler.Assembler
	logger      logging.Logger
}

// New wires an Engine. A nil categorizer disables categorization and a nil
// assembler uses the wall clock.
func New(
	reg *patterns.Registry,
	det *detector.Detector,
	parser *txparser.Parser,
	cat *categorizer.Categorizer,
	asm *assembler.Assembler,
	logger logging.Logger,
) *Engine {
	if asm == nil {
		asm = assembler.New(nil)
	}
	return &Engine{
		registry:    reg,
		detector:    det,
		parser:      parser,
		categorizer: cat,
		assembler:   asm,
		logger:      logging.OrDefault(logger),
	}
}

// Registry exposes the registry the engine was built with.
func (e *Engine) Registry() *patterns.Registry {
	return e.registry
}

// ListAvailableBanks returns the issuers known to the detector.
func (e *Engine) ListAvailableBanks() []detector.BankInfo {
	return e.detector.ListAvailableBanks()
}

// Extract turns invoice text into an Invoice. When override is non-empty
// detection is skipped. Only unusable input is an error: detection and
// field misses fall back to defaults and bad transaction lines are dropped.
func (e *Engine) Extract(ctx context.Context, text string, override bank.ID) (*models.Invoice, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &parsererror.ValidationError{Reason: "document text is empty"}
	}
	if !utf8.ValidString(text) {
		return nil, &parsererror.ValidationError{Reason: "document text is not valid UTF-8"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	id := e.resolveBank(text, override)
	log := e.logger.WithFields(
		logging.F(logging.FieldBank, string(id)),
		logging.F(logging.FieldVersion, e.registry.Version()),
	)

	set := e.registry.For(id)
	if set == nil {
		return nil, patterns.ErrNoPatternSet
	}
	if !e.registry.HasDedicated(id) {
		log.Debug("No dedicated pattern set, using generic patterns")
	}

	values := fields.ExtractAll(text, set)
	if missing := values.Missing(); len(missing) > 0 {
		log.Debug("Header fields not found", logging.F(logging.FieldMissing, missing))
	}

	result := e.parser.Parse(text, set)
	for _, f := range result.Failures() {
		log.WithError(f.Err).Warn("Dropping transaction line",
			logging.F(logging.FieldLine, f.Line),
			logging.F(logging.FieldReason, f.Reason),
			logging.F(logging.FieldRaw, f.Raw))
	}

	txs := result.Transactions()
	if e.categorizer != nil {
		for i := range txs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if category, ok := e.categorizer.Categorize(ctx, txs[i].Description); ok {
				txs[i].Category = category
			}
		}
	}

	inv := e.assembler.Assemble(id, values, txs)
	log.Info("Invoice extracted",
		logging.F(logging.FieldStrategy, string(set.Strategy())),
		logging.F(logging.FieldCount, len(inv.Transactions)),
		logging.F(logging.FieldDropped, len(result.Failures())+len(txs)-len(inv.Transactions)),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return &inv, nil
}

func (e *Engine) resolveBank(text string, override bank.ID) bank.ID {
	if override != "" {
		if id, ok := bank.Parse(string(override)); ok {
			return id
		}
		e.logger.Warn("Unknown bank override, using generic patterns",
			logging.F(logging.FieldBank, string(override)))
		return bank.Generic
	}
	id, ok := e.detector.Detect(text)
	if !ok {
		e.logger.Warn("Bank not detected, using generic patterns")
		return bank.Generic
	}
	return id
}
