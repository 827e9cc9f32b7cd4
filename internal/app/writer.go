package app

import (
	"fmt"

	"html2swim/internal/output"
)

type WriteResult struct {
	OutputDir  string
	Files      []string
	ReportPath string
	IndexPath  string
}

func (p *pipeline) writeOutputs(results []Result) (WriteResult, error) {
	if p.opts.toStdout() {
		return WriteResult{}, p.printSources(results)
	}

	written := WriteResult{OutputDir: p.opts.OutputDir}
	for _, r := range results {
		if !r.Output.OK() {
			continue
		}
		if err := output.WriteSource(r.Target, r.Output.Source); err != nil {
			return written, err
		}
		written.Files = append(written.Files, r.Target)
		p.logf("Wrote %s\n", r.Target)
	}

	if p.opts.Report {
		entries := reportEntries(results)
		reportPath, err := output.WriteReport(p.opts.OutputDir, output.NewRunReport(entries))
		if err != nil {
			return written, err
		}
		written.ReportPath = reportPath
		indexPath, err := output.WriteIndex(p.opts.OutputDir, entries)
		if err != nil {
			return written, err
		}
		written.IndexPath = indexPath
		p.logf("Wrote report: %s\nWrote index: %s\n", reportPath, indexPath)
	}
	return written, nil
}

// printSources writes every converted source to stdout. With more than one
// source each is preceded by a comment naming its input.
func (p *pipeline) printSources(results []Result) error {
	multi := len(results) > 1
	for _, r := range results {
		if !r.Output.OK() {
			continue
		}
		if multi {
			if _, err := fmt.Fprintf(p.opts.Stdout, "// %s\n", r.Source.Name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(p.opts.Stdout, r.Output.Source); err != nil {
			return err
		}
	}
	return nil
}

func reportEntries(results []Result) []output.Entry {
	entries := make([]output.Entry, 0, len(results))
	for _, r := range results {
		e := output.Entry{Input: r.Source.Name, Report: r.Report}
		if r.Output.OK() {
			e.Output = r.Target
		} else {
			e.Error = r.Output.Message()
		}
		entries = append(entries, e)
	}
	return entries
}
