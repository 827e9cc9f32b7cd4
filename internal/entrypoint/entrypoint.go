package entrypoint

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"html2swim/internal/app"
	"html2swim/internal/cli"
	"html2swim/internal/subcommands/inspect"
	"html2swim/internal/subcommands/testconfigs"
	"html2swim/internal/subcommands/watch"
	"html2swim/internal/tui"
)

var (
	runApp = app.Run
	runTUI = tui.Run

	interactive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	}
)

func Execute(args []string) (int, error) {
	if len(args) > 1 {
		switch args[1] {
		case "inspect":
			return exitCode(inspect.Run(args[2:]))
		case "watch":
			return exitCode(watch.Run(args[2:]))
		case "test-configs":
			return exitCode(testconfigs.Run(args[2:]))
		}
	}

	if len(args) == 1 && interactive() {
		res, err := runTUI()
		if err != nil {
			return 1, err
		}
		if !res.RunNow {
			return 0, nil
		}
		return run(res.Options)
	}

	opts, initConfig, err := cli.ParseArgs(args[1:])
	if err != nil {
		return exitCode(err)
	}

	if initConfig {
		return 0, cli.RunConfigWizard()
	}

	return run(opts)
}

// exitCode maps err to a process exit code: 0 on success, the code of a
// cli.ExitError, 1 otherwise.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, exitErr.Err
	}
	return 1, err
}

// run converts with an interrupt-aware context. Single runs are bounded by
// the fetch timeout; crawls run until they finish or are interrupted.
func run(opts app.Options) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if !opts.Crawl && opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if err := runApp(ctx, opts); err != nil {
		return 1, err
	}
	return 0, nil
}
