package output

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type IndexRecord struct {
	ID       string   `json:"id"`
	Input    string   `json:"input"`
	Output   string   `json:"output"`
	Elements int      `json:"elements"`
	Tags     []string `json:"tags"`
}

// WriteIndex writes one JSON line per generated source. Entries that failed
// to convert are left out.
func WriteIndex(outDir string, entries []Entry) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, IndexFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, e := range entries {
		if e.Error != "" || e.Output == "" {
			continue
		}
		// Stable ID: hash(input + output)
		idHash := sha256.Sum256([]byte(e.Input + "|" + e.Output))

		rec := IndexRecord{
			ID:       hex.EncodeToString(idHash[:])[:16],
			Input:    e.Input,
			Output:   e.Output,
			Elements: e.Report.Elements,
			Tags:     e.Report.TopTags(5),
		}

		line, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to marshal index record %q: %v\n", rec.Input, err)
			continue
		}
		if _, err := f.Write(line); err != nil {
			return "", err
		}
		if _, err := f.Write([]byte("\n")); err != nil {
			return "", err
		}
	}
	return path, nil
}
