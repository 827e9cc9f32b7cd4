package app

import (
	"context"
	"fmt"
	"path/filepath"

	"html2swim/internal/convert"
	"html2swim/internal/output"
	"html2swim/internal/report"
)

// Result is the outcome of converting one source.
type Result struct {
	Source Source
	Output convert.Output
	Report report.Report
	// Target is the file the source is written to. It is empty when
	// sources go to stdout.
	Target string
}

type pipeline struct {
	opts  Options
	hooks []Hook
}

func newPipeline(opts Options) (*pipeline, error) {
	hooks, err := buildHooks(opts)
	if err != nil {
		return nil, err
	}
	return &pipeline{opts: opts, hooks: hooks}, nil
}

// convert runs one source through the converter. A node kind without a
// rendering rule aborts the run; parse errors are kept on the result.
func (p *pipeline) convert(src Source) (Result, error) {
	out := convert.Convert(src.Content, p.opts.convertOptions(src.fetched()))
	if out.Fatal() {
		return Result{}, fmt.Errorf("%s: %w", src.Name, out.Err)
	}
	res := Result{Source: src, Output: out}
	if out.OK() {
		res.Report = report.Analyze(out.Root)
	}
	target, err := p.target(src)
	if err != nil {
		return Result{}, err
	}
	res.Target = target
	return res, nil
}

func (p *pipeline) convertAll(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		res, err := p.convert(src)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := p.runAfterConvertHooks(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *pipeline) target(src Source) (string, error) {
	if p.opts.toStdout() {
		return "", nil
	}
	switch {
	case src.URL != "":
		return output.URLSwiftPath(src.URL, p.opts.OutputDir)
	case src.Path != "":
		return output.SwiftPath(src.Path, src.Base, p.opts.OutputDir)
	default:
		return filepath.Join(p.opts.OutputDir, "stdin"+output.SourceExt), nil
	}
}

func (p *pipeline) shouldWrite(results []Result) bool {
	if p.opts.DryRun {
		p.logf("\nDry run complete (no files written).\n")
		return false
	}
	if p.opts.Yes || p.opts.toStdout() {
		return true
	}
	existing := 0
	for _, r := range results {
		if r.Output.OK() && output.Exists(r.Target) {
			existing++
		}
	}
	if existing == 0 {
		return true
	}
	if confirm(p.opts.Stdin, p.opts.Stdout, fmt.Sprintf("Overwrite %d existing file(s)? [y/N]: ", existing)) {
		return true
	}
	p.logf("Aborted.\n")
	return false
}

func (p *pipeline) logf(format string, args ...any) {
	if p.opts.toStdout() {
		return
	}
	fmt.Fprintf(p.opts.Stdout, format, args...)
}

func failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Output.OK() {
			n++
		}
	}
	return n
}
