// Package report summarizes a converted tree: node counts, attribute
// rewriting and markup issues worth a second look.
package report

import (
	"sort"
	"strings"

	"html2swim/internal/swim"
)

type Report struct {
	Elements         int            `json:"elements"`
	Texts            int            `json:"texts"`
	RawData          int            `json:"raw_data"`
	Comments         int            `json:"comments"`
	Doctypes         int            `json:"doctypes"`
	CustomAttributes int            `json:"custom_attributes"`
	RewrittenURLs    int            `json:"rewritten_urls"`
	MaxDepth         int            `json:"max_depth"`
	Tags             map[string]int `json:"tags"`
	DuplicateIDs     []string       `json:"duplicate_ids"`
	BrokenAnchors    []string       `json:"broken_anchors"`
}

type walker struct {
	rep     Report
	ids     []string
	anchors []string
}

func Analyze(root swim.Root) Report {
	w := &walker{rep: Report{Tags: map[string]int{}}}
	w.children(root.Children, 1)

	duplicates := findDuplicates(w.ids)
	broken := findBrokenAnchors(w.anchors, w.ids)
	sort.Strings(duplicates)
	sort.Strings(broken)
	w.rep.DuplicateIDs = duplicates
	w.rep.BrokenAnchors = broken
	return w.rep
}

// HasIssues reports whether the markup has duplicate ids or in-page links
// to ids that do not exist.
func (r Report) HasIssues() bool {
	return len(r.DuplicateIDs) > 0 || len(r.BrokenAnchors) > 0
}

// TopTags returns up to n tag names ordered by count, ties by name.
func (r Report) TopTags(n int) []string {
	tags := make([]string, 0, len(r.Tags))
	for tag := range r.Tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if r.Tags[tags[i]] != r.Tags[tags[j]] {
			return r.Tags[tags[i]] > r.Tags[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if n > 0 && len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

func (w *walker) children(nodes []swim.Node, depth int) {
	for _, n := range nodes {
		w.node(n, depth)
	}
}

func (w *walker) node(n swim.Node, depth int) {
	switch n := n.(type) {
	case swim.Element:
		w.rep.Elements++
		w.rep.Tags[n.Tag]++
		if depth > w.rep.MaxDepth {
			w.rep.MaxDepth = depth
		}
		for _, a := range n.Attrs {
			w.attr(n.Tag, a)
		}
		w.children(n.Children, depth+1)
	case swim.Text:
		if strings.TrimSpace(n.Value) != "" {
			w.rep.Texts++
		}
	case swim.RawData:
		w.rep.RawData++
	case swim.Comment:
		w.rep.Comments++
	case swim.Doctype:
		w.rep.Doctypes++
	case swim.Root:
		w.children(n.Children, depth)
	}
}

func (w *walker) attr(tag string, a swim.Attr) {
	if swim.IsCustom(tag, a.Key) {
		w.rep.CustomAttributes++
	}
	if swim.NormalizeValue(a.Key, a.Value) != a.Value {
		w.rep.RewrittenURLs++
	}
	switch a.Key {
	case "id":
		w.ids = append(w.ids, a.Value)
	case "href":
		if target, ok := strings.CutPrefix(a.Value, "#"); ok {
			w.anchors = append(w.anchors, target)
		}
	}
}

func findDuplicates(ids []string) []string {
	counts := map[string]int{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		counts[id]++
	}
	dups := []string{}
	for id, count := range counts {
		if count > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}

func findBrokenAnchors(anchors []string, ids []string) []string {
	idset := map[string]struct{}{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		idset[id] = struct{}{}
	}
	seen := map[string]struct{}{}
	broken := []string{}
	for _, a := range anchors {
		if a == "" {
			continue
		}
		if _, ok := idset[a]; ok {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		broken = append(broken, a)
	}
	return broken
}
