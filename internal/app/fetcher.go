package app

import (
	"context"
	"fmt"
	"time"

	"html2swim/internal/fetch"
)

var fetchPage = fetch.Fetch

var retryBackoffs = []time.Duration{0, time.Second, 2 * time.Second}

func loadURLSource(ctx context.Context, opts Options) (Source, error) {
	result, err := fetchResult(ctx, opts)
	if err != nil {
		return Source{}, fmt.Errorf("fetch %s: %w", opts.URL, err)
	}
	return Source{Name: opts.URL, URL: opts.URL, FetchInfo: result.SourceInfo, Content: result.HTML}, nil
}

func fetchResult(ctx context.Context, opts Options) (fetch.Result, error) {
	var cachePath string
	if opts.UseCache {
		cachePath = fetch.CachePath(opts.CacheDir, opts.URL)
		content, ok, err := fetch.LoadFromCache(cachePath)
		if err != nil {
			return fetch.Result{}, err
		}
		if ok {
			return fetch.Result{HTML: content, SourceInfo: "cache"}, nil
		}
	}

	var result fetch.Result
	var err error
	for attempt := 0; attempt < len(retryBackoffs); attempt++ {
		if attempt > 0 {
			time.Sleep(retryBackoffs[attempt])
			fmt.Fprintf(opts.Stderr, "Fetch attempt %d failed. Retrying...\n", attempt)
		}
		result, err = fetchPage(ctx, buildFetchOptions(opts))
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return fetch.Result{}, err
	}

	if cachePath != "" {
		if err := fetch.SaveToCache(cachePath, result.HTML); err != nil {
			fmt.Fprintf(opts.Stderr, "Warning: cache write failed: %v\n", err)
		}
	}

	return result, nil
}

func buildFetchOptions(opts Options) fetch.Options {
	return fetch.Options{
		URL:                opts.URL,
		Mode:               opts.Mode,
		Timeout:            opts.Timeout,
		UserAgent:          opts.UserAgent,
		WaitForSelector:    opts.WaitFor,
		ContentSelector:    opts.Selector,
		Headless:           opts.Headless,
		RateLimitPerSecond: opts.RateLimitPerSecond,
		ProxyURL:           opts.ProxyURL,
		Headers:            opts.AuthHeaders,
		Cookies:            opts.AuthCookies,
	}
}
