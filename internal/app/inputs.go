package app

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StdinName is the input path that reads markup from standard input.
const StdinName = "-"

var markupExts = []string{".html", ".htm", ".xhtml", ".erb"}

// Source is one piece of markup to convert.
type Source struct {
	// Name identifies the source in messages: a path, "-" or a URL.
	Name string
	// Path and Base are set for files; the output keeps Path's layout
	// relative to Base.
	Path string
	Base string
	URL  string
	// FetchInfo tells how a URL was retrieved (static, dynamic, cache).
	FetchInfo string
	Content   string
}

func (s Source) fetched() bool {
	return s.URL != ""
}

// IsMarkupFile reports whether name has an extension html2swim converts.
func IsMarkupFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range markupExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

type inputFile struct {
	Path string
	Base string
}

// collectInputs expands patterns into markup files. "dir/..." walks dir
// recursively, a directory lists its markup files, anything else must be a
// markup file. Hidden directories and node_modules are skipped while
// walking.
func collectInputs(patterns []string) ([]inputFile, error) {
	seen := map[string]bool{}
	var out []inputFile

	add := func(path, base string) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		out = append(out, inputFile{Path: clean, Base: filepath.Clean(base)})
	}

	for _, raw := range patterns {
		pat := strings.TrimSpace(raw)
		if pat == "" || pat == StdinName {
			continue
		}

		if strings.HasSuffix(pat, "/...") || pat == "..." {
			base := strings.TrimSuffix(strings.TrimSuffix(pat, "..."), "/")
			if base == "" {
				base = "."
			}
			files, err := walkMarkup(base)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f, base)
			}
			continue
		}

		st, err := os.Stat(pat)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			entries, err := os.ReadDir(pat)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if !e.IsDir() && IsMarkupFile(e.Name()) {
					add(filepath.Join(pat, e.Name()), pat)
				}
			}
			continue
		}
		if !IsMarkupFile(pat) {
			return nil, fmt.Errorf("not a markup file: %s", pat)
		}
		add(pat, filepath.Dir(pat))
	}

	return out, nil
}

func walkMarkup(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			name := de.Name()
			if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsMarkupFile(de.Name()) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func hasStdin(patterns []string) bool {
	for _, p := range patterns {
		if strings.TrimSpace(p) == StdinName {
			return true
		}
	}
	return false
}

func loadFileSources(opts Options) ([]Source, error) {
	var sources []Source
	if hasStdin(opts.Inputs) {
		data, err := io.ReadAll(opts.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		sources = append(sources, Source{Name: StdinName, Content: string(data)})
	}

	files, err := collectInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Name: f.Path, Path: f.Path, Base: f.Base, Content: string(data)})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no markup files matched %s", strings.Join(opts.Inputs, " "))
	}
	return sources, nil
}
