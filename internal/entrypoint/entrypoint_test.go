package entrypoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"html2swim/internal/app"
	"html2swim/internal/tui"
)

func stubRun(t *testing.T) *app.Options {
	t.Helper()
	var got app.Options
	orig := runApp
	runApp = func(_ context.Context, opts app.Options) error {
		got = opts
		return nil
	}
	t.Cleanup(func() { runApp = orig })
	return &got
}

func stubInteractive(t *testing.T, v bool) {
	t.Helper()
	orig := interactive
	interactive = func() bool { return v }
	t.Cleanup(func() { interactive = orig })
}

func TestExecute_ParsesFlags(t *testing.T) {
	got := stubRun(t)
	stubInteractive(t, true)

	code, err := Execute([]string{"html2swim", "--parser", "html", "page.html"})
	if err != nil || code != 0 {
		t.Fatalf("Execute()=(%d, %v)", code, err)
	}
	if len(got.Inputs) != 1 || got.Inputs[0] != "page.html" || got.Parser != "html" {
		t.Fatalf("unexpected options: %+v", *got)
	}
}

func TestExecute_UsageErrorExitCode(t *testing.T) {
	stubRun(t)
	code, err := Execute([]string{"html2swim", "--parser", "sgml", "page.html"})
	if err == nil || code != 2 {
		t.Fatalf("Execute()=(%d, %v), want code 2", code, err)
	}
}

func TestExecute_RunFailureExitCode(t *testing.T) {
	orig := runApp
	runApp = func(context.Context, app.Options) error {
		return &app.ConversionError{Failed: 1, Total: 1}
	}
	t.Cleanup(func() { runApp = orig })

	code, err := Execute([]string{"html2swim", "page.html"})
	var convErr *app.ConversionError
	if !errors.As(err, &convErr) || code != 1 {
		t.Fatalf("Execute()=(%d, %v), want conversion error", code, err)
	}
}

func TestExecute_NoArgsOnTerminalRunsForm(t *testing.T) {
	got := stubRun(t)
	stubInteractive(t, true)
	orig := runTUI
	runTUI = func() (tui.Result, error) {
		return tui.Result{RunNow: true, Options: app.Options{Inputs: []string{"from-form.html"}}}, nil
	}
	t.Cleanup(func() { runTUI = orig })

	code, err := Execute([]string{"html2swim"})
	if err != nil || code != 0 {
		t.Fatalf("Execute()=(%d, %v)", code, err)
	}
	if len(got.Inputs) != 1 || got.Inputs[0] != "from-form.html" {
		t.Fatalf("form options not used: %+v", *got)
	}
}

func TestExecute_FormSaveOnly(t *testing.T) {
	got := stubRun(t)
	stubInteractive(t, true)
	orig := runTUI
	runTUI = func() (tui.Result, error) { return tui.Result{SaveConfig: true}, nil }
	t.Cleanup(func() { runTUI = orig })

	if code, err := Execute([]string{"html2swim"}); err != nil || code != 0 {
		t.Fatalf("Execute()=(%d, %v)", code, err)
	}
	if len(got.Inputs) != 0 {
		t.Fatal("save-only must not run a conversion")
	}
}

func TestExecute_Subcommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(`<p>x</p>`), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code, err := Execute([]string{"html2swim", "test-configs", "--dir", dir}); err != nil || code != 0 {
		t.Fatalf("Execute()=(%d, %v)", code, err)
	}
}

func TestExecute_SubcommandExitCodes(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "configs")
	if err := os.MkdirAll(bad, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(bad, "broken.json"), []byte(`{"parser":"sgml"}`), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "inspect without source", args: []string{"inspect"}, want: 2},
		{name: "inspect unknown flag", args: []string{"inspect", "--nope"}, want: 2},
		{name: "inspect missing file", args: []string{"inspect", filepath.Join(dir, "missing.html")}, want: 1},
		{name: "watch without file", args: []string{"watch"}, want: 2},
		{name: "watch bad interval", args: []string{"watch", "--interval", "0s", "a.html"}, want: 2},
		{name: "test-configs unknown flag", args: []string{"test-configs", "--nope"}, want: 2},
		{name: "test-configs invalid config", args: []string{"test-configs", "--dir", bad}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Execute(append([]string{"html2swim"}, tt.args...))
			if err == nil || code != tt.want {
				t.Fatalf("Execute(%v)=(%d, %v), want code %d", tt.args, code, err, tt.want)
			}
		})
	}
}
