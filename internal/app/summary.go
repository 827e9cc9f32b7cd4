package app

import (
	"fmt"
	"strings"
)

// summarize prints what the run found. Conversion failures always go to
// stderr with the parser's message unchanged.
func (p *pipeline) summarize(results []Result) {
	for _, r := range results {
		if !r.Output.OK() {
			fmt.Fprintf(p.opts.Stderr, "%s: %s\n", r.Source.Name, r.Output.Message())
		}
	}
	if p.opts.toStdout() {
		return
	}

	if len(results) == 1 && results[0].Source.FetchInfo != "" {
		p.logf("Fetch mode: %s\n", results[0].Source.FetchInfo)
	}
	bad := failed(results)
	p.logf("Inputs: %d (converted %d, failed %d)\n", len(results), len(results)-bad, bad)

	var elements, custom, rewritten int
	for _, r := range results {
		elements += r.Report.Elements
		custom += r.Report.CustomAttributes
		rewritten += r.Report.RewrittenURLs
	}
	p.logf("Elements: %d, custom attributes: %d, rewritten urls: %d\n", elements, custom, rewritten)

	for _, r := range results {
		if !r.Report.HasIssues() {
			continue
		}
		p.logf("\nIssues in %s:\n", r.Source.Name)
		if len(r.Report.DuplicateIDs) > 0 {
			p.logf("  duplicate ids: %s\n", strings.Join(r.Report.DuplicateIDs, ", "))
		}
		if len(r.Report.BrokenAnchors) > 0 {
			p.logf("  broken anchors: %s\n", strings.Join(r.Report.BrokenAnchors, ", "))
		}
	}
}
