// Package container provides dependency injection for the extractor.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/fatura-extractor/internal/assembler"
	"fjacquet/fatura-extractor/internal/categorizer"
	"fjacquet/fatura-extractor/internal/config"
	"fjacquet/fatura-extractor/internal/detector"
	"fjacquet/fatura-extractor/internal/engine"
	"fjacquet/fatura-extractor/internal/export"
	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/normalizer"
	"fjacquet/fatura-extractor/internal/patterns"
	"fjacquet/fatura-extractor/internal/pdftext"
	"fjacquet/fatura-extractor/internal/txparser"
)

// Option customises NewContainer, mostly for tests.
type Option func(*options)

type options struct {
	logger    logging.Logger
	extractor pdftext.Extractor
	aiClient  categorizer.AIClient
	clock     assembler.Clock
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithExtractor replaces the configured PDF backend.
func WithExtractor(e pdftext.Extractor) Option {
	return func(o *options) { o.extractor = e }
}

// WithAIClient injects the AI client instead of connecting to Gemini. It
// only takes effect when AI categorization is enabled.
func WithAIClient(c categorizer.AIClient) Option {
	return func(o *options) { o.aiClient = c }
}

// WithClock fixes the processing timestamp of extracted invoices.
func WithClock(c assembler.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Container holds all application dependencies. It is immutable after
// creation; fields are reached through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	registry    *patterns.Registry
	aiClient    categorizer.AIClient
	categorizer *categorizer.Categorizer
	engine      *engine.Engine
	extractor   pdftext.Extractor
	exporter    *export.Exporter
	closers     []io.Closer
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}

	registry, err := loadRegistry(cfg.Patterns.File)
	if err != nil {
		return nil, err
	}

	c := &Container{logger: logger, config: cfg, registry: registry}

	if cfg.Categorization.AI {
		c.aiClient = o.aiClient
		if c.aiClient == nil {
			gemini, err := categorizer.NewGeminiClient(ctx, categorizer.GeminiOptions{
				APIKey:            cfg.AI.APIKey,
				Model:             cfg.AI.Model,
				RequestsPerMinute: cfg.AI.RequestsPerMinute,
				Timeout:           time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
			}, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create AI client: %w", err)
			}
			c.aiClient = gemini
			c.closers = append(c.closers, gemini)
		}
		logger.Info("AI categorization enabled")
	} else {
		logger.Debug("AI categorization disabled")
	}

	c.categorizer = categorizer.NewFromRegistry(registry, categorizer.Options{
		Fuzzy: cfg.Categorization.Fuzzy,
		AI:    c.aiClient,
	}, logger)

	det := detector.New(registry, detector.Options{
		MaxPages: cfg.Detection.MaxPages,
		MaxBytes: cfg.Detection.MaxBytes,
	})
	parser := txparser.New(normalizer.New(registry))
	c.engine = engine.New(registry, det, parser, c.categorizer, assembler.New(o.clock), logger)

	c.extractor = o.extractor
	if c.extractor == nil {
		c.extractor, err = pdftext.New(pdftext.Backend(cfg.PDF.Backend))
		if err != nil {
			return nil, err
		}
	}

	c.exporter = export.New(cfg.Delimiter(), logger)

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldVersion, registry.Version()),
		logging.F(logging.FieldBackend, cfg.PDF.Backend),
		logging.F(logging.FieldStrategy, c.categorizer.Strategies()))
	return c, nil
}

func loadRegistry(path string) (*patterns.Registry, error) {
	if path == "" {
		reg, err := patterns.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded pattern registry: %w", err)
		}
		return reg, nil
	}
	reg, err := patterns.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern registry %s: %w", path, err)
	}
	return reg, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the pattern registry.
func (c *Container) GetRegistry() *patterns.Registry {
	return c.registry
}

// GetCategorizer returns the categorizer.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetAIClient returns the AI client, nil when AI categorization is off.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// GetEngine returns the extraction engine.
func (c *Container) GetEngine() *engine.Engine {
	return c.engine
}

// GetExtractor returns the PDF text extractor.
func (c *Container) GetExtractor() pdftext.Extractor {
	return c.extractor
}

// GetExporter returns the report exporter.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// Close releases the resources held by the container.
func (c *Container) Close() error {
	var firstErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.logger.Debug("Container closed")
	return firstErr
}
