package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"html2swim/internal/report"
)

// Entry records the outcome of converting one input.
type Entry struct {
	Input  string        `json:"input"`
	Output string        `json:"output,omitempty"`
	Error  string        `json:"error,omitempty"`
	Report report.Report `json:"report"`
}

// RunReport is written as report.json when reporting is enabled.
type RunReport struct {
	Converted int     `json:"converted"`
	Failed    int     `json:"failed"`
	Entries   []Entry `json:"entries"`
}

func NewRunReport(entries []Entry) RunReport {
	rr := RunReport{Entries: entries}
	for _, e := range entries {
		if e.Error != "" {
			rr.Failed++
		} else {
			rr.Converted++
		}
	}
	return rr
}

func WriteReport(outputDir string, rr RunReport) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, ReportFile)
	data, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
