// Package tui collects run options interactively with huh forms.
package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"html2swim/internal/app"
	"html2swim/internal/cli"
	"html2swim/internal/config"
	"html2swim/internal/fetch"
	"html2swim/internal/parse"
)

type Result struct {
	Options    app.Options
	SaveConfig bool
	ConfigPath string
	Config     config.Config
	RunNow     bool
}

func Run() (Result, error) {
	printBanner()
	state := newFormState()

	if err := chooseConfig(state); err != nil {
		return Result{}, err
	}

	form := buildForm(state).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return Result{}, err
	}

	return buildResult(state)
}

func printBanner() {
	fmt.Print(`
  _     _             _ ____               _
 | |__ | |_ _ __ ___ | |___ \ _____      _(_)_ __ ___
 | '_ \| __| '_ ` + "`" + ` _ \| | __) / __\ \ /\ / / | '_ ` + "`" + ` _ \
 | | | | |_| | | | | | |/ __/\__ \\ V  V /| | | | | | |
 |_| |_|\__|_| |_| |_|_|_____|___/ \_/\_/ |_|_| |_| |_|
`)
}

// configAction is one entry of the saved-config menu. The zero value
// starts from defaults.
type configAction struct {
	verb string
	path string
}

var configVerbs = []struct {
	verb  string
	label string
}{
	{"load", "Load"},
	{"rename", "Rename"},
	{"clone", "Clone"},
	{"delete", "Delete"},
}

// Follow-up prompts for config actions. Tests replace them.
var (
	askName = func(title, path string) (string, error) {
		var name string
		err := huh.NewInput().Title(title).Value(&name).
			Validate(func(s string) error {
				_, err := siblingConfigPath(path, s)
				return err
			}).
			WithTheme(huh.ThemeDracula()).Run()
		return name, err
	}
	confirmDelete = func(path string) (bool, error) {
		var ok bool
		err := huh.NewConfirm().Title(fmt.Sprintf("Really delete %s?", path)).
			Affirmative("Delete").Negative("Keep").Value(&ok).
			WithTheme(huh.ThemeDracula()).Run()
		return ok, err
	}
)

// chooseConfig offers saved configs until one is loaded or the user starts
// fresh. Rename, clone and delete return to the menu.
func chooseConfig(state *formState) error {
	for {
		files, err := listConfigFiles()
		if err != nil {
			return fmt.Errorf("list configs: %w", err)
		}
		if len(files) == 0 {
			return nil
		}

		var picked configAction
		menu := huh.NewSelect[configAction]().
			Title("Saved configs").
			Description("Load or manage a config, or start from defaults.").
			Options(configMenu(files)...).
			Value(&picked)
		if err := huh.NewForm(huh.NewGroup(menu)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
			return err
		}

		done, err := applyConfigAction(picked, state)
		if err != nil || done {
			return err
		}
	}
}

func configMenu(files []string) []huh.Option[configAction] {
	opts := []huh.Option[configAction]{huh.NewOption("Start from defaults", configAction{})}
	for _, f := range files {
		for _, v := range configVerbs {
			opts = append(opts, huh.NewOption(v.label+" "+f, configAction{verb: v.verb, path: f}))
		}
	}
	return opts
}

// applyConfigAction runs a menu choice and reports whether the menu is
// finished.
func applyConfigAction(a configAction, state *formState) (bool, error) {
	switch a.verb {
	case "":
		return true, nil
	case "load":
		cfg, err := config.Load(a.path)
		if err != nil {
			return false, err
		}
		state.fromConfig(cfg)
		state.configPath = a.path
		return true, nil
	case "rename", "clone":
		name, err := askName(fmt.Sprintf("New name for %s", filepath.Base(a.path)), a.path)
		if err != nil {
			return false, err
		}
		target, err := siblingConfigPath(a.path, name)
		if err != nil {
			return false, err
		}
		if a.verb == "clone" {
			return false, cloneConfig(a.path, target)
		}
		return false, os.Rename(a.path, target)
	case "delete":
		ok, err := confirmDelete(a.path)
		if err != nil || !ok {
			return false, err
		}
		return false, os.Remove(a.path)
	}
	return false, fmt.Errorf("unknown config action %q", a.verb)
}

// listConfigFiles returns configs from every search directory that exists.
func listConfigFiles() ([]string, error) {
	var files []string
	for _, dir := range config.SearchDirs() {
		found, err := config.ListConfigs(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// siblingConfigPath resolves a new config name next to path. The name
// gets a .json extension unless it already has a config extension.
func siblingConfigPath(path, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("name cannot be empty")
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) {
		return "", errors.New("name must be a plain file name")
	}
	target := filepath.Join(filepath.Dir(path), ensureConfigExtension(name))
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%s already exists", target)
	}
	return target, nil
}

// cloneConfig re-encodes the config so a clone may switch between JSON
// and YAML by extension.
func cloneConfig(src, dst string) error {
	cfg, err := config.Load(src)
	if err != nil {
		return err
	}
	return config.Save(dst, cfg)
}

func ensureConfigExtension(s string) string {
	if config.IsConfigFile(s) {
		return s
	}
	return s + ".json"
}

type finishAction int

const (
	actionRun finishAction = iota
	actionSaveAndRun
	actionSave
)

// Numeric fields are edited as text and checked against these bounds.
var (
	indentBounds  = bounds{"indent", 0, 16}
	timeoutBounds = bounds{"timeout", 1, 3600}
	pagesBounds   = bounds{"max pages", 1, 100000}
	depthBounds   = bounds{"crawl depth", 1, 100}
)

type formState struct {
	inputs     string
	url        string
	crawl      bool
	parser     parse.Parser
	erb        bool
	tidy       bool
	indent     string
	selector   string
	exclude    string
	mode       fetch.Mode
	timeout    string
	rateLimit  string
	userAgent  string
	waitFor    string
	headless   bool
	sitemap    string
	maxPages   string
	crawlDepth string
	outputDir  string
	report     bool
	strict     bool
	dryRun     bool
	yes        bool
	configPath string
	action     finishAction

	// base holds the loaded config so settings without a form field
	// survive a save.
	base config.Config
}

func newFormState() *formState {
	return &formState{
		erb:        true,
		indent:     strconv.Itoa(app.DefaultIndent),
		mode:       fetch.ModeAuto,
		timeout:    strconv.Itoa(app.DefaultTimeoutSeconds),
		userAgent:  fetch.DefaultUserAgent,
		headless:   true,
		maxPages:   "100",
		crawlDepth: "2",
		configPath: config.DefaultConfigPath(),
	}
}

// fromConfig copies every value cfg carries into the form; unset values
// keep the form defaults.
func (s *formState) fromConfig(cfg config.Config) {
	s.base = cfg
	s.inputs = strings.Join(cfg.Inputs, " ")
	s.url = cfg.URL
	s.crawl = cfg.Crawl
	s.parser = parse.Parser(cfg.Parser)
	if cfg.ERB != nil {
		s.erb = *cfg.ERB
	}
	if cfg.Tidy != nil {
		s.tidy = *cfg.Tidy
	}
	if cfg.Indent != nil {
		s.indent = strconv.Itoa(*cfg.Indent)
	}
	s.selector = cfg.Selector
	s.exclude = cfg.ExcludeSelector
	if cfg.Mode != "" {
		s.mode = fetch.Mode(cfg.Mode)
	}
	if cfg.TimeoutSeconds > 0 {
		s.timeout = strconv.Itoa(cfg.TimeoutSeconds)
	}
	if cfg.RateLimitPerSecond > 0 {
		s.rateLimit = strconv.FormatFloat(cfg.RateLimitPerSecond, 'f', -1, 64)
	}
	if cfg.UserAgent != "" {
		s.userAgent = cfg.UserAgent
	}
	s.waitFor = cfg.WaitForSelector
	if cfg.Headless != nil {
		s.headless = *cfg.Headless
	}
	s.sitemap = cfg.SitemapURL
	if cfg.MaxPages > 0 {
		s.maxPages = strconv.Itoa(cfg.MaxPages)
	}
	if cfg.CrawlDepth > 0 {
		s.crawlDepth = strconv.Itoa(cfg.CrawlDepth)
	}
	s.outputDir = cfg.OutputDir
	s.report = cfg.Report
	s.strict = slices.Contains(cfg.PipelineHooks, "strict")
}

// toConfig turns the form into a validated config.
func (s *formState) toConfig() (config.Config, error) {
	indent, err := indentBounds.parse(s.indent)
	if err != nil {
		return config.Config{}, err
	}
	timeout, err := timeoutBounds.parse(s.timeout)
	if err != nil {
		return config.Config{}, err
	}
	rate, err := parseRate(s.rateLimit)
	if err != nil {
		return config.Config{}, err
	}
	maxPages, err := pagesBounds.parse(s.maxPages)
	if err != nil {
		return config.Config{}, err
	}
	depth, err := depthBounds.parse(s.crawlDepth)
	if err != nil {
		return config.Config{}, err
	}

	erb, tidy, headless := s.erb, s.tidy, s.headless
	cfg := s.base
	cfg.Inputs = strings.Fields(s.inputs)
	cfg.URL = strings.TrimSpace(s.url)
	cfg.Parser = string(s.parser)
	cfg.Tidy = &tidy
	cfg.ERB = &erb
	cfg.Indent = &indent
	cfg.OutputDir = strings.TrimSpace(s.outputDir)
	cfg.Selector = strings.TrimSpace(s.selector)
	cfg.ExcludeSelector = strings.TrimSpace(s.exclude)
	cfg.Report = s.report
	cfg.Mode = string(s.mode)
	cfg.TimeoutSeconds = timeout
	cfg.UserAgent = strings.TrimSpace(s.userAgent)
	cfg.WaitForSelector = strings.TrimSpace(s.waitFor)
	cfg.Headless = &headless
	cfg.RateLimitPerSecond = rate
	cfg.Crawl = s.crawl
	cfg.SitemapURL = strings.TrimSpace(s.sitemap)
	cfg.MaxPages = maxPages
	cfg.CrawlDepth = depth

	hooks := slices.DeleteFunc(slices.Clone(s.base.PipelineHooks), func(h string) bool { return h == "strict" })
	if s.strict {
		hooks = append(hooks, "strict")
	}
	cfg.PipelineHooks = nil
	if len(hooks) > 0 {
		cfg.PipelineHooks = hooks
	}
	return cfg, config.Validate(cfg)
}

// summary describes what the form will do, shown before the final choice.
func (s *formState) summary() string {
	var source string
	switch n := len(strings.Fields(s.inputs)); {
	case s.crawl:
		source = "Crawl " + strings.TrimSpace(s.url) + " (up to " + s.maxPages + " pages)"
	case strings.TrimSpace(s.url) != "":
		source = "Fetch " + strings.TrimSpace(s.url) + " (" + string(s.mode) + ")"
	case n == 1:
		source = "Convert 1 input"
	default:
		source = fmt.Sprintf("Convert %d inputs", n)
	}

	parser := string(s.parser)
	if parser == "" {
		parser = "default"
	}
	target := "print to stdout"
	if dir := strings.TrimSpace(s.outputDir); dir != "" {
		target = "write .swift files to " + dir
	}
	if s.dryRun {
		target = "dry run, nothing written"
	}
	return fmt.Sprintf("%s with the %s parser, %s.", source, parser, target)
}

// summaryInputs lists the fields summary reads. huh re-renders the note
// when their hash changes, and unexported struct fields are not hashed.
func (s *formState) summaryInputs() []any {
	return []any{&s.inputs, &s.url, &s.crawl, &s.mode, &s.maxPages, &s.parser, &s.outputDir, &s.dryRun}
}

func (s *formState) fetching() bool {
	return strings.TrimSpace(s.url) != "" || s.crawl
}

func buildForm(state *formState) *huh.Form {
	return huh.NewForm(
		sourceGroup(state),
		conversionGroup(state),
		networkGroup(state),
		crawlGroup(state),
		outputGroup(state),
		finishGroup(state),
	)
}

func sourceGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Inputs").Placeholder("templates/...").Value(&state.inputs).
			Description("Markup files, directories or dir/... patterns, separated by spaces."),
		huh.NewInput().Title("URL").Placeholder("https://example.com").Value(&state.url).
			Description("Convert a fetched page instead of files.").
			Validate(func(u string) error {
				hasInputs := strings.TrimSpace(state.inputs) != ""
				hasURL := strings.TrimSpace(u) != ""
				if hasInputs == hasURL {
					return errors.New("give either inputs or a url")
				}
				return nil
			}),
		huh.NewConfirm().Title("Crawl").Description("Follow links from the URL and convert every page?").Value(&state.crawl).
			Validate(func(crawl bool) error {
				if crawl && strings.TrimSpace(state.url) == "" {
					return errors.New("crawling starts from a url")
				}
				return nil
			}),
	).Title("Source")
}

func conversionGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[parse.Parser]().Title("Parser").Description("xml rejects malformed markup, html accepts anything.").Value(&state.parser).Options(
			huh.NewOption("default (xml for files, html for URLs)", parse.Parser("")),
			huh.NewOption("xml", parse.ParserXML),
			huh.NewOption("html", parse.ParserHTML),
		),
		huh.NewConfirm().Title("ERB").Description("Keep <% %> tags as comments?").Value(&state.erb),
		huh.NewConfirm().Title("Tidy").Description("Tidy markup before parsing?").Value(&state.tidy),
		huh.NewInput().Title("Indent (spaces)").Value(&state.indent).Validate(indentBounds.validate),
		huh.NewInput().Title("Selector").Description("html parser: convert only this subtree.").Placeholder("main").Value(&state.selector),
		huh.NewInput().Title("Exclude selector").Description("html parser: drop matching elements first.").Placeholder("nav, .ads").Value(&state.exclude),
	).Title("Conversion")
}

func networkGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[fetch.Mode]().Title("Fetch mode").Value(&state.mode).Options(
			huh.NewOption("auto (browser only for script-rendered pages)", fetch.ModeAuto),
			huh.NewOption("static", fetch.ModeStatic),
			huh.NewOption("dynamic (headless browser)", fetch.ModeDynamic),
		),
		huh.NewInput().Title("Timeout (seconds)").Value(&state.timeout).Validate(timeoutBounds.validate),
		huh.NewInput().Title("Rate limit (requests/sec, empty = off)").Value(&state.rateLimit).
			Validate(func(v string) error {
				_, err := parseRate(v)
				return err
			}),
		huh.NewInput().Title("Wait-for selector").Description("Defaults to the conversion selector.").Value(&state.waitFor),
		huh.NewConfirm().Title("Headless").Description("Hide the browser window?").Value(&state.headless),
		huh.NewInput().Title("User-Agent").Value(&state.userAgent),
	).Title("Fetching").WithHideFunc(func() bool { return !state.fetching() })
}

func crawlGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Sitemap URL").Description("Optional: seed the crawl from a sitemap.").Value(&state.sitemap),
		huh.NewInput().Title("Max pages").Value(&state.maxPages).Validate(pagesBounds.validate),
		huh.NewInput().Title("Crawl depth").Description("Links to follow from the start page.").Value(&state.crawlDepth).Validate(depthBounds.validate),
	).Title("Crawl").WithHideFunc(func() bool { return !state.crawl })
}

func outputGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().Title("Output dir").Description("Empty prints sources to stdout.").Placeholder("Sources/Views").Value(&state.outputDir),
		huh.NewConfirm().Title("Report").Description("Write report.json and index.jsonl (needs an output dir).").Value(&state.report).
			Validate(func(report bool) error {
				if report && strings.TrimSpace(state.outputDir) == "" {
					return errors.New("a report needs an output dir")
				}
				return nil
			}),
		huh.NewConfirm().Title("Dry run").Description("Convert and report without writing.").Value(&state.dryRun),
		huh.NewConfirm().Title("Strict").Description("Stop before writing if any input fails.").Value(&state.strict),
		huh.NewConfirm().Title("Overwrite without asking").Value(&state.yes),
	).Title("Output")
}

func finishGroup(state *formState) *huh.Group {
	return huh.NewGroup(
		huh.NewNote().Title("Summary").DescriptionFunc(state.summary, state.summaryInputs()),
		huh.NewSelect[finishAction]().Title("Action").Value(&state.action).Options(
			huh.NewOption("Convert now", actionRun),
			huh.NewOption("Save config and convert", actionSaveAndRun),
			huh.NewOption("Only save config", actionSave),
		),
		huh.NewInput().Title("Config path").Description(".json or .yaml; used by the save actions.").Value(&state.configPath),
	).Title("Finish")
}

func buildResult(state *formState) (Result, error) {
	cfg, err := state.toConfig()
	if err != nil {
		return Result{}, err
	}
	opts, err := cli.OptionsFromConfig(cfg)
	if err != nil {
		return Result{}, err
	}
	opts.DryRun = state.dryRun
	opts.Yes = state.yes

	res := Result{
		Options:    opts,
		Config:     cfg,
		ConfigPath: strings.TrimSpace(state.configPath),
		RunNow:     state.action != actionSave,
		SaveConfig: state.action != actionRun,
	}
	if !res.SaveConfig {
		return res, nil
	}
	if res.ConfigPath == "" {
		return Result{}, errors.New("config path is required to save")
	}
	res.ConfigPath = ensureConfigExtension(res.ConfigPath)
	if err := config.Save(res.ConfigPath, cfg); err != nil {
		return Result{}, err
	}
	return res, nil
}

type bounds struct {
	name     string
	min, max int
}

func (b bounds) parse(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", b.name)
	}
	if n < b.min || n > b.max {
		return 0, fmt.Errorf("%s must be between %d and %d", b.name, b.min, b.max)
	}
	return n, nil
}

func (b bounds) validate(s string) error {
	_, err := b.parse(s)
	return err
}

// parseRate reads requests per second; empty means no limit.
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1000 {
		return 0, errors.New("rate limit must be a number between 0 and 1000")
	}
	return f, nil
}
