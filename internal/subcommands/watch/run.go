// Package watch polls a markup file and reconverts it whenever its
// content changes.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"

	"html2swim/internal/app"
	"html2swim/internal/cli"
	"html2swim/internal/output"
	"html2swim/internal/parse"
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	timeStyle = lipgloss.NewStyle().Faint(true)
)

type options struct {
	File     string
	Out      string
	Parser   string
	Indent   int
	ERB      bool
	Interval time.Duration
}

func Run(args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return cli.ExitError{Code: 2, Err: err}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watch(ctx, opts, os.Stdout, os.Stderr)
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := options{}
	fs.StringVar(&opts.Out, "out", "", "Write the source to this file instead of stdout")
	fs.StringVar(&opts.Parser, "parser", string(parse.ParserXML), "Markup parser: xml|html")
	fs.IntVar(&opts.Indent, "indent", app.DefaultIndent, "Spaces per indentation level")
	fs.BoolVar(&opts.ERB, "erb", true, "Keep ERB tags as comments")
	fs.DurationVar(&opts.Interval, "interval", 300*time.Millisecond, "Polling interval")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		return options{}, errors.New("watch needs exactly one file")
	}
	opts.File = fs.Arg(0)
	if opts.Interval <= 0 {
		return options{}, errors.New("interval must be positive")
	}
	return opts, nil
}

// watch converts the file once and again after every content change
// until ctx is done. Read errors are reported and retried.
func watch(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	var lastHash [32]byte
	var have bool

	for {
		src, err := os.ReadFile(opts.File)
		if err != nil {
			fmt.Fprintf(stderr, "%s read error: %v\n", errStyle.Render("watch:"), err)
		} else if h := sha256.Sum256(src); !have || h != lastHash {
			lastHash = h
			have = true
			if err := convertOnce(opts, string(src), stdout, stderr); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(opts.Interval):
		}
	}
}

func convertOnce(opts options, content string, stdout, stderr io.Writer) error {
	res, err := app.Convert(app.Options{
		Parser: parse.Parser(opts.Parser),
		Indent: opts.Indent,
		ERB:    opts.ERB,
	}, app.Source{Name: opts.File, Path: opts.File, Content: content})
	if err != nil {
		return err
	}

	stamp := timeStyle.Render(time.Now().Format("15:04:05"))
	if !res.Output.OK() {
		fmt.Fprintf(stderr, "%s %s %s\n", stamp, errStyle.Render("error"), res.Output.Message())
		return nil
	}

	if opts.Out == "" {
		fmt.Fprint(stdout, res.Output.Source)
	} else if err := output.WriteSource(opts.Out, res.Output.Source); err != nil {
		fmt.Fprintf(stderr, "%s %s %v\n", stamp, errStyle.Render("error"), err)
		return nil
	}
	fmt.Fprintf(stderr, "%s %s %s (%d elements)\n", stamp, okStyle.Render("converted"), opts.File, res.Report.Elements)
	return nil
}
