// Package batch runs the extraction pipeline over many documents and
// aggregates the results.
package batch

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/models"
)

// sequentialThreshold is the file count below which the pool is not used.
const sequentialThreshold = 2

// ProcessFunc extracts one document.
type ProcessFunc func(ctx context.Context, path string) (*models.Invoice, error)

// Result is the outcome for one input file. Results keep the input order.
type Result struct {
	Index    int
	File     string
	Invoice  *models.Invoice
	Err      error
	Duration time.Duration
}

// Processor runs a ProcessFunc over files with a bounded worker pool.
type Processor struct {
	logger      logging.Logger
	workerCount int
}

// NewProcessor creates a Processor. workers <= 0 means runtime.NumCPU().
func NewProcessor(workers int, logger logging.Logger) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Processor{logger: logging.OrDefault(logger), workerCount: workers}
}

// Workers returns the pool size.
func (p *Processor) Workers() int {
	return p.workerCount
}

// Process runs fn over files. A failing file never stops the others; once
// ctx is done the remaining files are reported with ctx.Err().
func (p *Processor) Process(ctx context.Context, files []string, fn ProcessFunc) []Result {
	if len(files) < sequentialThreshold || p.workerCount == 1 {
		return p.processSequential(ctx, files, fn)
	}
	return p.processConcurrent(ctx, files, fn)
}

func (p *Processor) processSequential(ctx context.Context, files []string, fn ProcessFunc) []Result {
	results := make([]Result, 0, len(files))
	for i, file := range files {
		results = append(results, p.run(ctx, i, file, fn))
	}
	return results
}

type job struct {
	index int
	file  string
}

func (p *Processor) processConcurrent(ctx context.Context, files []string, fn ProcessFunc) []Result {
	jobs := make(chan job, p.workerCount)
	out := make(chan Result, len(files))

	workers := p.workerCount
	if workers > len(files) {
		workers = len(files)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out <- p.run(ctx, j.index, j.file, fn)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, file := range files {
			jobs <- job{index: i, file: file}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, len(files))
	for r := range out {
		results[r.Index] = r
	}

	p.logger.Debug("Concurrent processing completed",
		logging.F(logging.FieldCount, len(files)),
		logging.F(logging.FieldWorkers, workers))
	return results
}

func (p *Processor) run(ctx context.Context, index int, file string, fn ProcessFunc) Result {
	r := Result{Index: index, File: file}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}

	start := time.Now()
	r.Invoice, r.Err = fn(ctx, file)
	r.Duration = time.Since(start)

	if r.Err != nil {
		p.logger.WithError(r.Err).Warn("Failed to process file",
			logging.F(logging.FieldFile, filepath.Base(file)))
	} else {
		p.logger.Debug("Processed file",
			logging.F(logging.FieldFile, filepath.Base(file)),
			logging.F(logging.FieldBank, string(r.Invoice.BankID)),
			logging.F(logging.FieldCount, len(r.Invoice.Transactions)),
			logging.F(logging.FieldDuration, r.Duration.String()))
	}
	return r
}
