package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"html2swim/internal/crawler"
	"html2swim/internal/output"
)

func runCrawl(ctx context.Context, opts Options) error {
	p, err := newPipeline(opts)
	if err != nil {
		return err
	}
	c, baseURL, err := initCrawler(ctx, opts)
	if err != nil {
		return err
	}

	p.logf("Starting crawl from %s (max %d pages, depth %d)\n", baseURL, opts.MaxPages, opts.CrawlDepth)

	results, stats, err := c.Crawl(ctx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("crawl failed: %w", err)
	}

	p.logf("Crawl complete: %d pages crawled, %d failed\n", stats.PagesCrawled, stats.PagesFailed)

	if opts.DryRun {
		p.logf("\nDry run complete (no files written).\n")
		return nil
	}
	if !opts.Yes && !confirm(opts.Stdin, opts.Stdout, fmt.Sprintf("Write sources for %d page(s) to %s? [y/N]: ", len(results), opts.OutputDir)) {
		p.logf("Aborted.\n")
		return nil
	}

	return processCrawlResults(ctx, p, opts, baseURL, results, stats)
}

func initCrawler(ctx context.Context, opts Options) (*crawler.Crawler, string, error) {
	urlFilter, err := buildURLFilter(opts.CrawlFilter)
	if err != nil {
		return nil, "", err
	}

	baseURL, err := determineBaseURL(opts)
	if err != nil {
		return nil, "", err
	}

	c, err := crawler.New(buildCrawlerOptions(opts, baseURL, urlFilter))
	if err != nil {
		return nil, "", fmt.Errorf("create crawler: %w", err)
	}

	if err := addSitemapURLs(ctx, c, opts); err != nil {
		return nil, "", err
	}

	return c, baseURL, nil
}

func buildURLFilter(filter string) (*regexp.Regexp, error) {
	if filter == "" {
		return nil, nil
	}
	urlFilter, err := regexp.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid crawl filter regex: %w", err)
	}
	return urlFilter, nil
}

func determineBaseURL(opts Options) (string, error) {
	if opts.URL != "" {
		return opts.URL, nil
	}
	if opts.SitemapURL != "" {
		u, err := url.Parse(opts.SitemapURL)
		if err != nil {
			return "", fmt.Errorf("invalid sitemap URL: %w", err)
		}
		return u.Scheme + "://" + u.Host, nil
	}
	return "", fmt.Errorf("no URL or sitemap URL provided")
}

func buildCrawlerOptions(opts Options, baseURL string, urlFilter *regexp.Regexp) crawler.Options {
	crawlerOpts := crawler.Options{
		BaseURL:     baseURL,
		RateLimit:   opts.RateLimitPerSecond,
		Parallelism: 2,
		UserAgent:   opts.UserAgent,
		MaxDepth:    opts.CrawlDepth,
		MaxPages:    opts.MaxPages,
		URLFilter:   urlFilter,
		Timeout:     opts.Timeout,
		ProxyURL:    opts.ProxyURL,
		Headers:     opts.AuthHeaders,
		Cookies:     opts.AuthCookies,
	}
	if crawlerOpts.RateLimit <= 0 {
		crawlerOpts.RateLimit = 1.0
	}
	return crawlerOpts
}

func addSitemapURLs(ctx context.Context, c *crawler.Crawler, opts Options) error {
	if opts.SitemapURL == "" {
		return nil
	}
	sitemapURLs, err := crawler.ParseSitemap(ctx, opts.SitemapURL, crawler.SitemapOptions{
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
	})
	if err != nil {
		return fmt.Errorf("parse sitemap: %w", err)
	}
	fmt.Fprintf(opts.Stdout, "Found %d URLs in sitemap\n", len(sitemapURLs))
	if err := c.AddURLs(sitemapURLs); err != nil {
		return fmt.Errorf("add sitemap URLs: %w", err)
	}
	return nil
}

func processCrawlResults(ctx context.Context, p *pipeline, opts Options, baseURL string, results map[string]*crawler.Result, stats crawler.Stats) error {
	resumeEntries, err := loadResumeEntries(opts)
	if err != nil {
		return err
	}

	pageURLs := make([]string, 0, len(results))
	for pageURL := range results {
		pageURLs = append(pageURLs, pageURL)
	}
	sort.Strings(pageURLs)

	outputs := map[string]crawler.PageOutput{}
	converted := []Result{}
	written := WriteResult{OutputDir: opts.OutputDir}
	for _, pageURL := range pageURLs {
		result := results[pageURL]
		if entry, ok := resumeEntries[pageURL]; ok && shouldResumeSkip(opts, result, entry) {
			if _, err := os.Stat(filepath.Join(opts.OutputDir, entry.File)); err == nil {
				outputs[pageURL] = crawler.PageOutput{File: entry.File, Elements: entry.Elements}
				p.logf("Skipped (unchanged): %s\n", entry.File)
				continue
			}
		}
		if result == nil || result.Error != nil || result.HTML == "" {
			fmt.Fprintf(opts.Stderr, "Warning: skipping %s: empty or errored result\n", pageURL)
			continue
		}

		res, err := p.convert(Source{Name: pageURL, URL: pageURL, FetchInfo: "crawl", Content: result.HTML})
		if err != nil {
			return err
		}
		converted = append(converted, res)
		if !res.Output.OK() {
			fmt.Fprintf(opts.Stderr, "Warning: failed to convert %s: %s\n", pageURL, res.Output.Message())
			outputs[pageURL] = crawler.PageOutput{Err: res.Output.Err}
			continue
		}
		if err := output.WriteSource(res.Target, res.Output.Source); err != nil {
			return err
		}
		written.Files = append(written.Files, res.Target)
		rel, err := filepath.Rel(opts.OutputDir, res.Target)
		if err != nil {
			rel = res.Target
		}
		outputs[pageURL] = crawler.PageOutput{File: rel, Elements: res.Report.Elements}
		p.logf("Wrote: %s (%d elements)\n", res.Target, res.Report.Elements)
	}

	if err := p.runAfterConvertHooks(ctx, converted); err != nil {
		return err
	}

	index := crawler.BuildIndex(results, stats, baseURL, outputs)
	if err := output.WriteCrawlIndex(opts.OutputDir, index, true); err != nil {
		return fmt.Errorf("write crawl index: %w", err)
	}
	p.logf("Wrote crawl index: %s (%d pages, %d elements)\n",
		filepath.Join(opts.OutputDir, output.CrawlFile), index.PagesCrawled, index.TotalElements)

	if opts.Report {
		entries := reportEntries(converted)
		reportPath, err := output.WriteReport(opts.OutputDir, output.NewRunReport(entries))
		if err != nil {
			return err
		}
		written.ReportPath = reportPath
	}

	return p.runAfterWriteHooks(ctx, converted, written)
}

func loadResumeEntries(opts Options) (map[string]crawler.PageEntry, error) {
	if !opts.Resume {
		return nil, nil
	}
	index, err := output.ReadCrawlIndex(opts.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read crawl index: %w", err)
	}
	entries := make(map[string]crawler.PageEntry, len(index.Pages))
	for _, page := range index.Pages {
		entries[page.URL] = page
	}
	return entries, nil
}

func shouldResumeSkip(opts Options, result *crawler.Result, entry crawler.PageEntry) bool {
	if !opts.Resume {
		return false
	}
	if result == nil || result.Error != nil || result.ContentHash == "" {
		return false
	}
	return entry.Status == "success" && entry.File != "" && entry.ContentHash == result.ContentHash
}
