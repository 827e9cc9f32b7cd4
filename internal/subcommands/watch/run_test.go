package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer lets the test read output while watch is still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// replaceFile swaps content in with a rename so the watcher never sees a
// half-written file.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
}

func TestWatch_ReconvertsOnChange(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	out := filepath.Join(dir, "page.swift")
	if err := os.WriteFile(in, []byte(`<p>one</p>`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, options{File: in, Out: out, Parser: "xml", Indent: 4, Interval: 10 * time.Millisecond}, &stdout, &stderr)
	}()

	readOut := func() string {
		data, _ := os.ReadFile(out)
		return string(data)
	}
	waitFor(t, func() bool { return readOut() == "p() {\n    \"one\"\n}\n" })

	replaceFile(t, in, `<p>two</p>`)
	waitFor(t, func() bool { return readOut() == "p() {\n    \"two\"\n}\n" })

	replaceFile(t, in, `<p>broken`)
	waitFor(t, func() bool { return strings.Contains(stderr.String(), "error") })
	if got := readOut(); got != "p() {\n    \"two\"\n}\n" {
		t.Fatalf("failed conversion must keep last output, got %q", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
	if strings.Count(stderr.String(), "converted") != 2 {
		t.Fatalf("expected two conversions, got:\n%s", stderr.String())
	}
	if stdout.String() != "" {
		t.Fatalf("stdout should stay empty with --out, got %q", stdout.String())
	}
}

func TestWatch_PrintsToStdout(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	if err := os.WriteFile(in, []byte(`<br/>`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, options{File: in, Parser: "xml", Indent: 4, Interval: 10 * time.Millisecond}, &stdout, &stderr)
	}()
	waitFor(t, func() bool { return stdout.String() == "br()\n" })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "file", args: []string{"page.html"}},
		{name: "flags", args: []string{"--interval", "1s", "--parser", "html", "page.html"}},
		{name: "no file", args: nil, wantErr: true},
		{name: "two files", args: []string{"a.html", "b.html"}, wantErr: true},
		{name: "zero interval", args: []string{"--interval", "0s", "a.html"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOptions(%v) err=%v wantErr=%v", tt.args, err, tt.wantErr)
			}
		})
	}
}
