// Package output writes generated Swim sources and the files that describe
// a run.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	SourceExt  = ".swift"
	ReportFile = "report.json"
	IndexFile  = "index.jsonl"
	CrawlFile  = "crawl-index.json"
)

// WriteSource writes src to path, creating parent directories.
func WriteSource(path, src string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(src), 0644)
}

// Exists reports whether a file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// SwiftPath maps an input file to its generated source under outDir. The
// layout below baseDir is kept, so templates/blog/post.html.erb read from
// templates becomes outDir/blog/post.swift.
func SwiftPath(inputPath, baseDir, outDir string) (string, error) {
	rel := filepath.Base(inputPath)
	if baseDir != "" {
		r, err := filepath.Rel(baseDir, inputPath)
		if err != nil {
			return "", err
		}
		if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%s is outside %s", inputPath, baseDir)
		}
		rel = r
	}
	return filepath.Join(outDir, trimMarkupExt(rel)+SourceExt), nil
}

// URLSwiftPath maps a page URL to its generated source under outDir. The
// site root and directory URLs map to index.swift.
func URLSwiftPath(pageURL, outDir string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" || strings.HasSuffix(path, "/") {
		path += "index"
	}

	path = strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = sanitizePathComponent(part)
	}

	return filepath.Join(outDir, trimMarkupExt(filepath.Join(parts...))+SourceExt), nil
}

func trimMarkupExt(name string) string {
	for _, ext := range []string{".erb", ".html", ".htm", ".xhtml"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
		}
	}
	return name
}

func sanitizePathComponent(s string) string {
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "?", "_")
	s = strings.ReplaceAll(s, "*", "_")
	s = strings.ReplaceAll(s, "\"", "_")
	s = strings.ReplaceAll(s, "<", "_")
	s = strings.ReplaceAll(s, ">", "_")
	s = strings.ReplaceAll(s, "|", "_")
	if s == "" || s == "." || s == ".." {
		s = "_"
	}
	return s
}
