package output_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"html2swim/internal/output"
	"html2swim/internal/report"
)

func TestSwiftPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		base    string
		out     string
		want    string
		wantErr bool
	}{
		{name: "html", input: "templates/index.html", base: "templates", out: "Views", want: filepath.Join("Views", "index.swift")},
		{name: "nested erb", input: "templates/blog/post.html.erb", base: "templates", out: "Views", want: filepath.Join("Views", "blog", "post.swift")},
		{name: "no base", input: "a/b/page.htm", out: "out", want: filepath.Join("out", "page.swift")},
		{name: "upper ext", input: "x/PAGE.HTML", base: "x", out: "o", want: filepath.Join("o", "PAGE.swift")},
		{name: "outside base", input: "other/page.html", base: "templates", out: "o", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := output.SwiftPath(tt.input, tt.base, tt.out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SwiftPath()=%q want %q", got, tt.want)
			}
		})
	}
}

func TestURLSwiftPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com", want: filepath.Join("out", "index.swift")},
		{url: "https://example.com/", want: filepath.Join("out", "index.swift")},
		{url: "https://example.com/docs/", want: filepath.Join("out", "docs", "index.swift")},
		{url: "https://example.com/blog/post.html", want: filepath.Join("out", "blog", "post.swift")},
		{url: "https://example.com/a:b", want: filepath.Join("out", "a_b.swift")},
	}
	for _, tt := range tests {
		got, err := output.URLSwiftPath(tt.url, "out")
		if err != nil {
			t.Fatalf("URLSwiftPath(%q) error: %v", tt.url, err)
		}
		if got != tt.want {
			t.Fatalf("URLSwiftPath(%q)=%q want %q", tt.url, got, tt.want)
		}
	}
}

func TestWriteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "page.swift")
	if output.Exists(path) {
		t.Fatal("expected no file yet")
	}
	if err := output.WriteSource(path, "div()\n"); err != nil {
		t.Fatalf("WriteSource error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "div()\n" {
		t.Fatalf("unexpected content %q", data)
	}
	if !output.Exists(path) {
		t.Fatal("expected file to exist")
	}
}

func TestWriteReportAndIndex(t *testing.T) {
	dir := t.TempDir()
	entries := []output.Entry{
		{Input: "a.html", Output: "a.swift", Report: report.Report{Elements: 2, Tags: map[string]int{"p": 2}}},
		{Input: "b.html", Error: "XML syntax error on line 1"},
	}
	rr := output.NewRunReport(entries)
	if rr.Converted != 1 || rr.Failed != 1 {
		t.Fatalf("unexpected totals: %+v", rr)
	}

	path, err := output.WriteReport(dir, rr)
	if err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got output.RunReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(got.Entries) != 2 || got.Entries[1].Error == "" {
		t.Fatalf("unexpected report: %+v", got)
	}

	indexPath, err := output.WriteIndex(dir, entries)
	if err != nil {
		t.Fatalf("WriteIndex error: %v", err)
	}
	f, err := os.Open(indexPath)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer f.Close()
	var records []output.IndexRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec output.IndexRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		records = append(records, rec)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Output != "a.swift" || len(records[0].ID) != 16 || records[0].Elements != 2 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}
