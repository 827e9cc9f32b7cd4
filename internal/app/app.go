// Package app runs a conversion: it loads markup from files, stdin or a
// URL, converts it to Swim source and writes or prints the result.
package app

import (
	"context"
	"fmt"
)

// ConversionError is returned when some inputs could not be converted. The
// parser messages have already been printed by then.
type ConversionError struct {
	Failed int
	Total  int
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%d of %d input(s) failed to convert", e.Failed, e.Total)
}

func Run(ctx context.Context, opts Options) error {
	normalized, err := normalizeOptions(opts)
	if err != nil {
		return err
	}

	if normalized.Crawl {
		return runCrawl(ctx, normalized)
	}

	return runSingle(ctx, normalized)
}

func runSingle(ctx context.Context, opts Options) error {
	p, err := newPipeline(opts)
	if err != nil {
		return err
	}

	sources, err := loadSources(ctx, opts)
	if err != nil {
		return err
	}

	results, err := p.convertAll(ctx, sources)
	if err != nil {
		return err
	}
	p.summarize(results)

	if p.shouldWrite(results) {
		written, err := p.writeOutputs(results)
		if err != nil {
			return err
		}
		if err := p.runAfterWriteHooks(ctx, results, written); err != nil {
			return err
		}
	}

	if bad := failed(results); bad > 0 {
		return &ConversionError{Failed: bad, Total: len(results)}
	}
	return nil
}

func loadSources(ctx context.Context, opts Options) ([]Source, error) {
	if opts.URL != "" {
		src, err := loadURLSource(ctx, opts)
		if err != nil {
			return nil, err
		}
		return []Source{src}, nil
	}
	return loadFileSources(opts)
}

// Convert runs the pipeline over a single in-memory source and returns the
// result without writing anything. It is used by watch and inspect.
func Convert(opts Options, src Source) (Result, error) {
	opts.OutputDir = ""
	normalized, err := normalizeOptions(withPlaceholderInput(opts))
	if err != nil {
		return Result{}, err
	}
	p, err := newPipeline(normalized)
	if err != nil {
		return Result{}, err
	}
	return p.convert(src)
}

func withPlaceholderInput(opts Options) Options {
	if len(opts.Inputs) == 0 && opts.URL == "" {
		opts.Inputs = []string{StdinName}
	}
	opts.Crawl = false
	opts.Report = false
	return opts
}
