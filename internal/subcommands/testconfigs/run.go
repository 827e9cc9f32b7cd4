// Package testconfigs dry-runs every config in a directory and reports
// which ones still convert.
package testconfigs

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"html2swim/internal/app"
	"html2swim/internal/cli"
	"html2swim/internal/config"
)

type options struct {
	Dir      string
	DryRun   bool
	Timeout  int
	Headless bool
}

// Summary counts config outcomes for one run.
type Summary struct {
	OK      int
	Failed  int
	Invalid int
	Skipped int
}

func Run(args []string) error {
	sum, err := run(args, os.Stdout)
	if err != nil {
		return err
	}
	if sum.Failed > 0 || sum.Invalid > 0 {
		return fmt.Errorf("%d config(s) failed, %d invalid", sum.Failed, sum.Invalid)
	}
	return nil
}

func run(args []string, w io.Writer) (Summary, error) {
	opts, err := parseOptions(args)
	if err != nil {
		return Summary{}, cli.ExitError{Code: 2, Err: err}
	}

	resolvedDir := resolveDir(opts.Dir)
	files, err := config.ListConfigs(resolvedDir)
	if err != nil {
		return Summary{}, fmt.Errorf("read configs dir: %w", err)
	}

	var sum Summary
	for _, path := range files {
		name := filepath.Base(path)
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(w, "%s: INVALID (%v)\n", name, err)
			sum.Invalid++
			continue
		}
		if len(cfg.Inputs) == 0 && strings.TrimSpace(cfg.URL) == "" && strings.TrimSpace(cfg.SitemapURL) == "" {
			fmt.Fprintf(w, "%s: SKIP (no inputs or url)\n", name)
			sum.Skipped++
			continue
		}

		fmt.Fprintf(w, "\n=== %s ===\n", name)
		if err := runConfig(path, opts, w); err != nil {
			fmt.Fprintf(w, "FAILED: %v\n", err)
			sum.Failed++
		} else {
			fmt.Fprintf(w, "OK\n")
			sum.OK++
		}
	}

	fmt.Fprintf(w, "\nConfigs: %d ok, %d failed, %d invalid, %d skipped\n", sum.OK, sum.Failed, sum.Invalid, sum.Skipped)
	return sum, nil
}

func runConfig(path string, opts options, w io.Writer) error {
	args := []string{"--config", path, "--yes", fmt.Sprintf("--headless=%t", opts.Headless)}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	runOpts, _, err := cli.ParseArgs(args)
	if err != nil {
		var exitErr cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Err
		}
		return err
	}
	runOpts.Stdout = w
	runOpts.Stderr = w

	timeout := time.Duration(opts.Timeout) * time.Second
	if runOpts.Timeout > timeout {
		timeout = runOpts.Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return app.Run(ctx, runOpts)
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("test-configs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := options{}
	fs.StringVar(&opts.Dir, "dir", config.DefaultConfigDir, "Directory of config files")
	fs.BoolVar(&opts.DryRun, "dry-run", true, "Dry-run (no files written)")
	fs.IntVar(&opts.Timeout, "timeout", app.DefaultTimeoutSeconds, "Timeout seconds per config")
	fs.BoolVar(&opts.Headless, "headless", true, "Run browser headless")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func resolveDir(dir string) string {
	if strings.TrimSpace(dir) != "" {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	for _, candidate := range config.SearchDirs() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return dir
}
