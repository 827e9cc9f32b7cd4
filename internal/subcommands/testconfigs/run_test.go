package testconfigs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_ReportsEachConfig(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	bad := filepath.Join(dir, "bad.html")
	write := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	write(page, `<p>ok</p>`)
	write(bad, `<p>broken`)
	write(filepath.Join(dir, "README.txt"), "ignore")
	write(filepath.Join(dir, "a-ok.json"), `{"inputs": ["`+page+`"]}`)
	write(filepath.Join(dir, "b-fail.yaml"), "inputs:\n  - "+bad+"\n")
	write(filepath.Join(dir, "c-invalid.json"), `{"inputs": ["x.html"], "parser": "sgml"}`)
	write(filepath.Join(dir, "d-empty.json"), `{}`)

	var out bytes.Buffer
	sum, err := run([]string{"--dir", dir}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum != (Summary{OK: 1, Failed: 1, Invalid: 1, Skipped: 1}) {
		t.Fatalf("unexpected summary %+v\n%s", sum, out.String())
	}
	got := out.String()
	for _, want := range []string{"=== a-ok.json ===", "c-invalid.json: INVALID", "d-empty.json: SKIP", "FAILED: 1 of 1 input(s) failed to convert"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRun_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := Run([]string{"--dir", dir, "--dry-run"}); err != nil {
		t.Fatalf("run: %v", err)
	}
}
