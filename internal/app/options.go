package app

import (
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"html2swim/internal/convert"
	"html2swim/internal/fetch"
	"html2swim/internal/parse"
)

const (
	DefaultOutputRoot     = "output"
	DefaultIndent         = 4
	DefaultTimeoutSeconds = 45
)

var hostSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type Options struct {
	Inputs []string
	URL    string

	// Parser may be left empty: files then use the strict xml parser and
	// fetched pages the html parser.
	Parser          parse.Parser
	Tidy            bool
	ERB             bool
	Indent          int
	Selector        string
	ExcludeSelector string

	OutputDir string
	Yes       bool
	DryRun    bool
	Report    bool

	Mode               fetch.Mode
	Timeout            time.Duration
	UserAgent          string
	WaitFor            string
	Headless           bool
	RateLimitPerSecond float64
	ProxyURL           string
	AuthHeaders        map[string]string
	AuthCookies        map[string]string
	UseCache           bool
	CacheDir           string

	Crawl       bool
	Resume      bool
	SitemapURL  string
	MaxPages    int
	CrawlDepth  int
	CrawlFilter string

	PipelineHooks []string
	PostCommands  []string

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func normalizeOptions(opts Options) (Options, error) {
	hasInputs := len(opts.Inputs) > 0
	hasURL := strings.TrimSpace(opts.URL) != ""
	switch {
	case opts.Crawl && !hasURL && strings.TrimSpace(opts.SitemapURL) == "":
		return opts, errors.New("url or sitemap is required for crawl mode")
	case opts.Crawl && hasInputs:
		return opts, errors.New("crawl mode does not take input files")
	case !opts.Crawl && hasInputs && hasURL:
		return opts, errors.New("pass either input files or --url, not both")
	case !opts.Crawl && !hasInputs && !hasURL:
		return opts, errors.New("no input: pass files, - for stdin, or --url")
	}
	switch opts.Parser {
	case "", parse.ParserXML, parse.ParserHTML:
	default:
		return opts, errors.New("unknown parser: " + string(opts.Parser))
	}
	if opts.Indent < 0 {
		return opts, errors.New("indent must not be negative")
	}
	if opts.Indent == 0 {
		opts.Indent = DefaultIndent
	}
	if opts.Mode == "" {
		opts.Mode = fetch.ModeAuto
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fetch.DefaultUserAgent
	}
	if opts.Crawl && opts.OutputDir == "" {
		urlForHost := opts.URL
		if urlForHost == "" {
			urlForHost = opts.SitemapURL
		}
		host := hostFromURL(urlForHost)
		if host == "" {
			host = "default"
		}
		opts.OutputDir = filepath.Join(DefaultOutputRoot, host)
	}
	if opts.Report && opts.OutputDir == "" {
		return opts, errors.New("--report needs --out")
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return opts, nil
}

// toStdout reports whether generated sources are printed rather than
// written to files. Progress lines are suppressed in that case.
func (o Options) toStdout() bool {
	return o.OutputDir == ""
}

func (o Options) convertOptions(fetched bool) convert.Options {
	parser := o.Parser
	if parser == "" {
		parser = parse.ParserXML
		if fetched {
			parser = parse.ParserHTML
		}
	}
	return convert.Options{
		Parser:          parser,
		ERB:             o.ERB,
		Indent:          strings.Repeat(" ", o.Indent),
		Selector:        o.Selector,
		ExcludeSelector: o.ExcludeSelector,
		Tidy:            o.Tidy,
	}
}

func hostFromURL(urlStr string) string {
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.ReplaceAll(u.Hostname(), ".", "_")
	return hostSanitizer.ReplaceAllString(host, "")
}
