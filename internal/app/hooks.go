package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Hook runs alongside the pipeline. Hooks are named in the config
// (pipeline_hooks) and run in the order given.
type Hook interface {
	Name() string
	AfterConvert(ctx context.Context, opts Options, results []Result) error
	AfterWrite(ctx context.Context, opts Options, results []Result, written WriteResult) error
}

type HookBase struct{}

func (HookBase) AfterConvert(context.Context, Options, []Result) error { return nil }
func (HookBase) AfterWrite(context.Context, Options, []Result, WriteResult) error {
	return nil
}

type hookFactory func(opts Options) (Hook, error)

var hookRegistry = map[string]hookFactory{
	"strict": func(Options) (Hook, error) { return strictHook{}, nil },
	"exec":   func(Options) (Hook, error) { return execHook{}, nil },
}

func buildHooks(opts Options) ([]Hook, error) {
	names := opts.PipelineHooks
	if len(opts.PostCommands) > 0 {
		names = append(append([]string(nil), names...), "exec")
	}
	names = dedupePreserveOrder(names)
	out := make([]Hook, 0, len(names))
	for _, name := range names {
		factory, ok := hookRegistry[name]
		if !ok {
			return nil, fmt.Errorf("unknown pipeline hook %q (available: %s)", name, strings.Join(sortedKeys(hookRegistry), ", "))
		}
		h, err := factory(opts)
		if err != nil {
			return nil, fmt.Errorf("init hook %q: %w", name, err)
		}
		out = append(out, h)
	}
	return out, nil
}

func (p *pipeline) runAfterConvertHooks(ctx context.Context, results []Result) error {
	for _, h := range p.hooks {
		if err := h.AfterConvert(ctx, p.opts, results); err != nil {
			return fmt.Errorf("hook %q failed (after convert): %w", h.Name(), err)
		}
	}
	return nil
}

func (p *pipeline) runAfterWriteHooks(ctx context.Context, results []Result, written WriteResult) error {
	for _, h := range p.hooks {
		if err := h.AfterWrite(ctx, p.opts, results, written); err != nil {
			return fmt.Errorf("hook %q failed (after write): %w", h.Name(), err)
		}
	}
	return nil
}

func dedupePreserveOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, raw := range items {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// strictHook fails the run before anything is written when an input did
// not convert or its markup has duplicate ids or dangling in-page links.
type strictHook struct {
	HookBase
}

func (strictHook) Name() string { return "strict" }

func (strictHook) AfterConvert(_ context.Context, _ Options, results []Result) error {
	var problems []string
	for _, r := range results {
		switch {
		case !r.Output.OK():
			problems = append(problems, r.Source.Name+": conversion failed")
		case r.Report.HasIssues():
			problems = append(problems, r.Source.Name+": markup issues")
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type execHook struct {
	HookBase
}

func (execHook) Name() string { return "exec" }

func (execHook) AfterWrite(ctx context.Context, opts Options, _ []Result, written WriteResult) error {
	commands := make([]string, 0, len(opts.PostCommands))
	for _, c := range opts.PostCommands {
		c = strings.TrimSpace(c)
		if c == "" || strings.HasPrefix(c, "#") {
			continue
		}
		commands = append(commands, c)
	}

	for _, cmdStr := range commands {
		cmd, err := commandForShell(ctx, cmdStr)
		if err != nil {
			return err
		}
		cmd.Env = append(os.Environ(),
			"HTML2SWIM_URL="+opts.URL,
			"HTML2SWIM_OUTPUT_DIR="+written.OutputDir,
			"HTML2SWIM_FILES="+strings.Join(absPaths(written.Files), string(filepath.ListSeparator)),
			"HTML2SWIM_REPORT_PATH="+written.ReportPath,
			"HTML2SWIM_INDEX_PATH="+written.IndexPath,
		)
		if written.OutputDir != "" {
			cmd.Dir = written.OutputDir
		}
		// Sources may be on stdout, so command output goes to stderr.
		cmd.Stdout = opts.Stderr
		cmd.Stderr = opts.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("post command failed %q: %w", cmdStr, err)
		}
	}
	return nil
}

// absPaths makes paths usable from the command's working directory.
func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}

func commandForShell(ctx context.Context, command string) (*exec.Cmd, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, errors.New("empty command")
	}
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command), nil
	}
	return exec.CommandContext(ctx, "sh", "-c", command), nil
}
