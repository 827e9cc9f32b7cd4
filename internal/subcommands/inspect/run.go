// Package inspect shows how a page or file converts without writing
// anything: element counts, markup issues, selector candidates and an
// optional text preview.
package inspect

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"html2swim/internal/app"
	"html2swim/internal/cli"
	"html2swim/internal/fetch"
	"html2swim/internal/markdown"
	"html2swim/internal/parse"
)

type candidate struct {
	Selector string
	Links    int
	Text     int
}

type options struct {
	URL           string
	File          string
	Parser        string
	Selector      string
	WaitFor       string
	TimeoutSec    int
	CheckSelector string
	Preview       bool
	UseCache      bool
	Headless      bool
	Mode          string
}

var fetchPage = fetch.Fetch

func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, w io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return cli.ExitError{Code: 2, Err: err}
	}
	if strings.TrimSpace(opts.URL) == "" && strings.TrimSpace(opts.File) == "" {
		return cli.ExitError{Code: 2, Err: errors.New("--url or a file is required")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeoutSec)*time.Second)
	defer cancel()

	src, err := loadSource(ctx, opts, w)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src.Content))
	if err != nil {
		return err
	}

	if strings.TrimSpace(opts.CheckSelector) != "" {
		inspectSpecificSelector(w, doc, opts.CheckSelector)
		return nil
	}

	if err := printConversion(w, opts, src); err != nil {
		return err
	}
	printCandidates(w, collectCandidates(doc))
	printTopLinkContainers(w, doc, 5)

	if opts.Preview {
		return printPreview(w, opts, src.Content)
	}
	return nil
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := options{}
	fs.StringVar(&opts.URL, "url", "", "URL to inspect")
	fs.StringVar(&opts.Parser, "parser", "", "Markup parser: xml|html (default: xml for files, html for URLs)")
	fs.StringVar(&opts.Selector, "selector", "", "Convert only this subtree (html parser)")
	fs.StringVar(&opts.WaitFor, "wait-for", "", "CSS selector to wait for (dynamic mode)")
	fs.IntVar(&opts.TimeoutSec, "timeout", app.DefaultTimeoutSeconds, "Timeout seconds")
	fs.StringVar(&opts.CheckSelector, "check-selector", "", "Specific selector to validate")
	fs.BoolVar(&opts.Preview, "preview", false, "Print a Markdown preview of the text")
	fs.BoolVar(&opts.UseCache, "cache", false, "Use disk cache for fetched HTML")
	fs.BoolVar(&opts.Headless, "headless", true, "Run browser headless")
	fs.StringVar(&opts.Mode, "mode", string(fetch.ModeAuto), "Fetch mode: auto|static|dynamic")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func loadSource(ctx context.Context, opts options, w io.Writer) (app.Source, error) {
	if opts.URL == "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return app.Source{}, err
		}
		return app.Source{Name: opts.File, Path: opts.File, Content: string(data)}, nil
	}

	cachePath := fetch.CachePath(fetch.DefaultCacheDir, opts.URL)
	if opts.UseCache {
		if content, ok, err := fetch.LoadFromCache(cachePath); err == nil && ok {
			fmt.Fprintf(w, "Loaded from cache: %s\n", cachePath)
			return app.Source{Name: opts.URL, URL: opts.URL, FetchInfo: "cache", Content: content}, nil
		}
	}

	mode, err := fetch.ParseMode(opts.Mode)
	if err != nil {
		return app.Source{}, err
	}
	result, err := fetchPage(ctx, fetch.Options{
		URL:             opts.URL,
		Mode:            mode,
		Timeout:         time.Duration(opts.TimeoutSec) * time.Second,
		WaitForSelector: opts.WaitFor,
		ContentSelector: opts.Selector,
		Headless:        opts.Headless,
		UserAgent:       fetch.DefaultUserAgent,
	})
	if err != nil {
		return app.Source{}, err
	}

	if opts.UseCache {
		_ = fetch.SaveToCache(cachePath, result.HTML)
	}

	return app.Source{Name: opts.URL, URL: opts.URL, FetchInfo: result.SourceInfo, Content: result.HTML}, nil
}

func printConversion(w io.Writer, opts options, src app.Source) error {
	res, err := app.Convert(app.Options{
		Parser:   parse.Parser(opts.Parser),
		ERB:      true,
		Selector: opts.Selector,
	}, src)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Source: %s\n", src.Name)
	if src.FetchInfo != "" {
		fmt.Fprintf(w, "Fetch mode: %s\n", src.FetchInfo)
	}
	if !res.Output.OK() {
		fmt.Fprintf(w, "Conversion failed: %s\n\n", res.Output.Message())
		return nil
	}

	r := res.Report
	fmt.Fprintf(w, "Elements: %d, texts: %d, comments: %d, max depth: %d\n", r.Elements, r.Texts, r.Comments, r.MaxDepth)
	fmt.Fprintf(w, "Custom attributes: %d, rewritten urls: %d\n", r.CustomAttributes, r.RewrittenURLs)
	if top := r.TopTags(5); len(top) > 0 {
		fmt.Fprintf(w, "Top tags: %s\n", strings.Join(top, ", "))
	}
	if len(r.DuplicateIDs) > 0 {
		fmt.Fprintf(w, "Duplicate ids: %s\n", strings.Join(r.DuplicateIDs, ", "))
	}
	if len(r.BrokenAnchors) > 0 {
		fmt.Fprintf(w, "Broken anchors: %s\n", strings.Join(r.BrokenAnchors, ", "))
	}
	fmt.Fprintln(w)
	return nil
}

func printPreview(w io.Writer, opts options, html string) error {
	md, err := markdown.NewConverter(hostOf(opts.URL)).Preview(html)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	fmt.Fprintln(w, "\nPreview:")
	if md == "" {
		fmt.Fprintln(w, "(no visible text)")
		return nil
	}
	fmt.Fprint(w, md)
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func collectCandidates(doc *goquery.Document) []candidate {
	selectors := []string{
		"main", "article", "[role='main']", ".content", "#content",
		"nav", "aside", "header", "footer", "section",
	}

	candidates := []candidate{}
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			linkCount := s.Find("a").Length()
			textCount := len(strings.TrimSpace(s.Text()))
			if linkCount == 0 && textCount == 0 {
				return
			}
			candidates = append(candidates, candidate{Selector: sel, Links: linkCount, Text: textCount})
		})
	}
	return candidates
}

func printCandidates(w io.Writer, candidates []candidate) {
	fmt.Fprintln(w, "Selector candidates (links/text length):")
	for _, c := range candidates {
		fmt.Fprintf(w, "- %s: links=%d text=%d\n", c.Selector, c.Links, c.Text)
	}
}

func printTopLinkContainers(w io.Writer, doc *goquery.Document, limit int) {
	fmt.Fprintln(w, "\nTop containers by link count (any element):")
	type box struct {
		Sel   string
		Links int
	}
	boxes := []box{}
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		links := s.Find("a").Length()
		if links >= 10 {
			boxes = append(boxes, box{Sel: nodeSelector(s), Links: links})
		}
	})
	for i, b := range boxes {
		if i >= limit {
			break
		}
		fmt.Fprintf(w, "- %s (links=%d)\n", b.Sel, b.Links)
	}
}

func nodeSelector(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if id, exists := s.Attr("id"); exists && id != "" {
		return fmt.Sprintf("#%s", id)
	}
	if classStr, exists := s.Attr("class"); exists {
		classes := strings.Fields(classStr)
		if len(classes) > 0 {
			return fmt.Sprintf("%s.%s", s.Get(0).Data, strings.Join(classes, "."))
		}
	}
	return s.Get(0).Data
}

func inspectSpecificSelector(w io.Writer, doc *goquery.Document, selector string) {
	sel := doc.Find(selector)
	fmt.Fprintf(w, "Inspecting selector: '%s'\n", selector)
	fmt.Fprintf(w, "Found %d matching element(s)\n", sel.Length())

	sel.Each(func(i int, s *goquery.Selection) {
		if i >= 3 {
			return
		}
		fmt.Fprintf(w, "\n--- Match #%d ---\n", i+1)

		if s.Length() > 0 && s.Get(0) != nil {
			fmt.Fprintf(w, "Tag: %s\n", s.Get(0).Data)
		}

		if id, ok := s.Attr("id"); ok {
			fmt.Fprintf(w, "ID: %s\n", id)
		}
		if class, ok := s.Attr("class"); ok {
			fmt.Fprintf(w, "Class: %s\n", class)
		}

		text := strings.TrimSpace(s.Text())
		fmt.Fprintf(w, "Text Length: %d chars\n", len(text))
		if len(text) > 100 {
			fmt.Fprintf(w, "Text Preview: %s...\n", text[:100])
		} else {
			fmt.Fprintf(w, "Text Preview: %s\n", text)
		}

		links := s.Find("a").Length()
		fmt.Fprintf(w, "Links inside: %d\n", links)
	})
}
