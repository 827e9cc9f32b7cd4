package cli

import (
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"html2swim/internal/app"
	"html2swim/internal/config"
	"html2swim/internal/fetch"
	"html2swim/internal/parse"
)

type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e ExitError) Unwrap() error { return e.Err }

// stdinPiped reports whether markup can be read from standard input.
var stdinPiped = func() bool {
	fd := os.Stdin.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// ParseArgs turns command-line arguments into run options. Positional
// arguments are input files, directories or dir/... patterns; "-" reads
// standard input. The bool result is true when --init-config was given.
func ParseArgs(args []string) (app.Options, bool, error) {
	parsed, err := parseFlags(args)
	if err != nil {
		return app.Options{}, false, ExitError{Code: 2, Err: err}
	}
	if parsed.initConfig {
		return app.Options{}, true, nil
	}

	cfg, err := loadConfig(parsed.configStr)
	if err != nil {
		return app.Options{}, false, ExitError{Code: 2, Err: err}
	}

	applyConfigDefaults(&parsed, cfg)
	return buildOptions(parsed)
}

// OptionsFromConfig builds run options from cfg the same way a run with
// only --config would.
func OptionsFromConfig(cfg config.Config) (app.Options, error) {
	if err := config.Validate(cfg); err != nil {
		return app.Options{}, err
	}
	parsed := newParsedFlags()
	applyConfigDefaults(&parsed, cfg)
	opts, _, err := buildOptions(parsed)
	return opts, err
}

type parsedFlags struct {
	inputs      []string
	urlStr      setting[string]
	configStr   string
	initConfig  bool
	dryRun      bool
	yes         bool
	strict      bool
	parser      setting[parse.Parser]
	tidy        toggle
	erb         toggle
	indent      setting[int]
	outputDir   setting[string]
	selector    setting[string]
	excludeSel  setting[string]
	report      toggle
	mode        setting[fetch.Mode]
	timeout     setting[int]
	userAgent   setting[string]
	waitFor     setting[string]
	headless    toggle
	rateLimit   setting[float64]
	proxy       setting[string]
	headers     pairs
	cookies     pairs
	useCache    toggle
	cacheDir    setting[string]
	crawl       toggle
	resume      toggle
	sitemap     setting[string]
	maxPages    setting[int]
	crawlDepth  setting[int]
	crawlFilter setting[string]
	hooks       setting[string]
	postCmds    []string
}

func newParsedFlags() parsedFlags {
	return parsedFlags{
		urlStr:      textSetting(""),
		parser:      parserSetting(),
		tidy:        toggleSetting(false),
		erb:         toggleSetting(true),
		indent:      countSetting(app.DefaultIndent),
		outputDir:   textSetting(""),
		selector:    textSetting(""),
		excludeSel:  textSetting(""),
		report:      toggleSetting(false),
		mode:        modeSetting(),
		timeout:     countSetting(app.DefaultTimeoutSeconds),
		userAgent:   textSetting(""),
		waitFor:     textSetting(""),
		headless:    toggleSetting(true),
		rateLimit:   rateSetting(),
		proxy:       textSetting(""),
		useCache:    toggleSetting(false),
		cacheDir:    textSetting(""),
		crawl:       toggleSetting(false),
		resume:      toggleSetting(false),
		sitemap:     textSetting(""),
		maxPages:    countSetting(100),
		crawlDepth:  countSetting(2),
		crawlFilter: textSetting(""),
		hooks:       textSetting(""),
	}
}

func parseFlags(args []string) (parsedFlags, error) {
	fs := flag.NewFlagSet("html2swim", flag.ContinueOnError)
	parsed := newParsedFlags()

	fs.Var(&parsed.urlStr, "url", "Fetch markup from this URL instead of files")
	fs.StringVar(&parsed.configStr, "config", "", "Path to JSON or YAML config file")
	fs.BoolVar(&parsed.initConfig, "init-config", false, "Interactive config wizard")
	fs.BoolVar(&parsed.dryRun, "dry-run", false, "Convert and report only; do not write files")
	fs.BoolVar(&parsed.yes, "yes", false, "Overwrite existing files without asking")
	fs.BoolVar(&parsed.strict, "strict", false, "Fail before writing if any input fails or has markup issues")
	fs.Var(&parsed.parser, "parser", "Markup parser: xml|html (default: xml for files, html for URLs)")
	fs.Var(&parsed.tidy, "tidy", "Tidy markup before parsing")
	fs.Var(&parsed.erb, "erb", "Keep ERB tags as comments")
	fs.Var(&parsed.indent, "indent", "Spaces per indentation level")
	fs.Var(&parsed.outputDir, "out", "Output directory (default: print to stdout)")
	fs.Var(&parsed.selector, "selector", "CSS selector for the subtree to convert (html parser)")
	fs.Var(&parsed.excludeSel, "exclude-selector", "CSS selector to remove before converting (html parser)")
	fs.Var(&parsed.report, "report", "Write report.json and index.jsonl next to the sources")
	fs.Var(&parsed.mode, "mode", "Fetch mode: auto|static|dynamic")
	fs.Var(&parsed.timeout, "timeout", "Timeout seconds")
	fs.Var(&parsed.userAgent, "user-agent", "User-Agent header")
	fs.Var(&parsed.waitFor, "wait-for", "CSS selector to wait for (dynamic mode)")
	fs.Var(&parsed.headless, "headless", "Run browser headless (dynamic mode)")
	fs.Var(&parsed.rateLimit, "rate-limit", "Requests per second (0 = off)")
	fs.Var(&parsed.proxy, "proxy", "Proxy URL for fetching")
	fs.Var(&parsed.headers, "header", "Request header key=value (repeatable)")
	fs.Var(&parsed.cookies, "cookie", "Request cookie key=value (repeatable)")
	fs.Var(&parsed.useCache, "cache", "Use disk cache for fetched HTML")
	fs.Var(&parsed.cacheDir, "cache-dir", "Cache directory")
	fs.Var(&parsed.crawl, "crawl", "Crawl the site from --url and convert every page")
	fs.Var(&parsed.resume, "resume", "Skip crawled pages whose content is unchanged")
	fs.Var(&parsed.sitemap, "sitemap", "Sitemap URL to seed the crawl")
	fs.Var(&parsed.maxPages, "max-pages", "Maximum pages to crawl")
	fs.Var(&parsed.crawlDepth, "crawl-depth", "Maximum link depth to crawl")
	fs.Var(&parsed.crawlFilter, "crawl-filter", "Regex URLs must match to be crawled")
	fs.Var(&parsed.hooks, "hooks", "Comma-separated pipeline hooks (strict, exec)")

	// Flags and inputs may be interleaved.
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return parsed, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		parsed.inputs = append(parsed.inputs, rest[0])
		rest = rest[1:]
	}

	return parsed, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Config{}, nil
	}
	return config.Load(path)
}

func applyConfigDefaults(parsed *parsedFlags, cfg config.Config) {
	applyInputs(parsed, cfg)
	applyConversion(parsed, cfg)
	applyFetch(parsed, cfg)
	applyCrawl(parsed, cfg)
}

func applyInputs(parsed *parsedFlags, cfg config.Config) {
	if len(parsed.inputs) == 0 && !parsed.urlStr.WasSet {
		parsed.inputs = append(parsed.inputs, cfg.Inputs...)
	}
	if len(parsed.inputs) == 0 {
		parsed.urlStr.fill(cfg.URL, cfg.URL != "")
	}
}

func applyConversion(parsed *parsedFlags, cfg config.Config) {
	parsed.parser.fill(parse.Parser(cfg.Parser), cfg.Parser != "")
	parsed.tidy.fillPtr(cfg.Tidy)
	parsed.erb.fillPtr(cfg.ERB)
	parsed.indent.fillPtr(cfg.Indent)
	parsed.outputDir.fill(cfg.OutputDir, cfg.OutputDir != "")
	parsed.selector.fill(cfg.Selector, cfg.Selector != "")
	parsed.excludeSel.fill(cfg.ExcludeSelector, cfg.ExcludeSelector != "")
	parsed.report.fill(true, cfg.Report)
	parsed.postCmds = cfg.PostCommands
	parsed.hooks.fill(strings.Join(cfg.PipelineHooks, ","), len(cfg.PipelineHooks) > 0)
}

func applyFetch(parsed *parsedFlags, cfg config.Config) {
	parsed.mode.fill(fetch.Mode(cfg.Mode), cfg.Mode != "")
	parsed.timeout.fill(cfg.TimeoutSeconds, cfg.TimeoutSeconds > 0)
	parsed.userAgent.fill(cfg.UserAgent, cfg.UserAgent != "")
	parsed.waitFor.fill(cfg.WaitForSelector, cfg.WaitForSelector != "")
	parsed.headless.fillPtr(cfg.Headless)
	parsed.rateLimit.fill(cfg.RateLimitPerSecond, cfg.RateLimitPerSecond > 0)
	parsed.proxy.fill(cfg.ProxyURL, cfg.ProxyURL != "")
	parsed.headers.merge(cfg.AuthHeaders)
	parsed.cookies.merge(cfg.AuthCookies)
	parsed.useCache.fill(true, cfg.Cache)
	parsed.cacheDir.fill(cfg.CacheDir, cfg.CacheDir != "")
}

func applyCrawl(parsed *parsedFlags, cfg config.Config) {
	parsed.crawl.fill(true, cfg.Crawl)
	parsed.resume.fill(true, cfg.Resume)
	parsed.sitemap.fill(cfg.SitemapURL, cfg.SitemapURL != "")
	parsed.maxPages.fill(cfg.MaxPages, cfg.MaxPages > 0)
	parsed.crawlDepth.fill(cfg.CrawlDepth, cfg.CrawlDepth > 0)
	parsed.crawlFilter.fill(cfg.CrawlFilter, cfg.CrawlFilter != "")
}

func buildOptions(parsed parsedFlags) (app.Options, bool, error) {
	inputs := parsed.inputs
	if len(inputs) == 0 && parsed.urlStr.Value == "" && parsed.sitemap.Value == "" && stdinPiped() {
		inputs = []string{app.StdinName}
	}
	if len(inputs) == 0 && parsed.urlStr.Value == "" && parsed.sitemap.Value == "" {
		return app.Options{}, false, ExitError{Code: 2, Err: errors.New("no input: pass files, - for stdin, or --url")}
	}

	hooks := splitList(parsed.hooks.Value)
	if parsed.strict {
		hooks = append(hooks, "strict")
	}

	opts := app.Options{
		Inputs:             inputs,
		URL:                strings.TrimSpace(parsed.urlStr.Value),
		Parser:             parsed.parser.Value,
		Tidy:               parsed.tidy.Value,
		ERB:                parsed.erb.Value,
		Indent:             parsed.indent.Value,
		Selector:           parsed.selector.Value,
		ExcludeSelector:    parsed.excludeSel.Value,
		OutputDir:          parsed.outputDir.Value,
		Yes:                parsed.yes,
		DryRun:             parsed.dryRun,
		Report:             parsed.report.Value,
		Mode:               parsed.mode.Value,
		Timeout:            time.Duration(parsed.timeout.Value) * time.Second,
		UserAgent:          parsed.userAgent.Value,
		WaitFor:            parsed.waitFor.Value,
		Headless:           parsed.headless.Value,
		RateLimitPerSecond: parsed.rateLimit.Value,
		ProxyURL:           parsed.proxy.Value,
		AuthHeaders:        parsed.headers.Values,
		AuthCookies:        parsed.cookies.Values,
		UseCache:           parsed.useCache.Value,
		CacheDir:           parsed.cacheDir.Value,
		Crawl:              parsed.crawl.Value,
		Resume:             parsed.resume.Value,
		SitemapURL:         parsed.sitemap.Value,
		MaxPages:           parsed.maxPages.Value,
		CrawlDepth:         parsed.crawlDepth.Value,
		CrawlFilter:        parsed.crawlFilter.Value,
		PipelineHooks:      hooks,
		PostCommands:       parsed.postCmds,
	}
	if opts.UseCache && opts.CacheDir == "" {
		opts.CacheDir = fetch.DefaultCacheDir
	}
	return opts, false, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
