package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"html2swim/internal/app"
	"html2swim/internal/config"
	"html2swim/internal/fetch"
	"html2swim/internal/parse"
)

func RunConfigWizard() error {
	return runWizard(os.Stdin, os.Stdout)
}

func runWizard(in io.Reader, out io.Writer) error {
	p := prompter{r: bufio.NewReader(in), w: out}
	fmt.Fprintln(out, "Config wizard (press Enter to accept defaults)")

	path := ask(p, "Config file path (.json or .yaml)", config.DefaultConfigPath(), parseText)
	inputs := ask(p, "Inputs (space separated, optional)", "", parseText)
	urlStr := ask(p, "URL (optional)", "", parseText)
	parser := ask(p, "Parser (xml|html, empty = by source)", parse.Parser(""), parseParser)
	erb := ask(p, "Keep ERB tags as comments", true, parseToggle)
	indent := ask(p, "Indent spaces", app.DefaultIndent, parseCount)
	outputDir := ask(p, "Output dir (optional, empty = stdout)", "", parseText)

	cfg := config.Config{
		Inputs:    strings.Fields(inputs),
		URL:       urlStr,
		Parser:    string(parser),
		ERB:       &erb,
		Indent:    &indent,
		OutputDir: outputDir,
	}
	// Fetch settings only matter when there is something to fetch.
	if cfg.URL != "" {
		mode := ask(p, "Fetch mode (auto|static|dynamic)", fetch.ModeAuto, fetch.ParseMode)
		timeout := ask(p, "Timeout seconds", app.DefaultTimeoutSeconds, parseCount)
		waitFor := ask(p, "Wait for selector (dynamic mode, optional)", "", parseText)
		headless := ask(p, "Headless browser", true, parseToggle)
		cfg.Mode = string(mode)
		cfg.TimeoutSeconds = timeout
		cfg.WaitForSelector = waitFor
		cfg.Headless = &headless
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

// ask reads one answer for label. An empty answer keeps def; an answer
// conv rejects is asked for again until the input ends.
func ask[T any](p prompter, label string, def T, conv func(string) (T, error)) T {
	shown := fmt.Sprint(def)
	for {
		if shown != "" {
			fmt.Fprintf(p.w, "%s [%s]: ", label, shown)
		} else {
			fmt.Fprintf(p.w, "%s: ", label)
		}
		line, readErr := p.r.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return def
		}
		v, err := conv(line)
		if err == nil {
			return v
		}
		fmt.Fprintf(p.w, "  %v\n", err)
		if readErr != nil {
			return def
		}
	}
}

func parseText(v string) (string, error) {
	return v, nil
}
