// Package fetch retrieves markup from a URL, either over plain HTTP or by
// rendering the page in a headless browser.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

const (
	DefaultTimeout   = 45 * time.Second
	DefaultUserAgent = "html2swim/1.0"
)

type Options struct {
	URL                string
	Mode               Mode
	Timeout            time.Duration
	UserAgent          string
	WaitForSelector    string
	ContentSelector    string
	Headless           bool
	RateLimitPerSecond float64
	ProxyURL           string
	Headers            map[string]string
	Cookies            map[string]string
}

type Result struct {
	HTML       string
	FinalMode  Mode
	SourceInfo string
}

var staticFetch = fetchStatic
var dynamicFetch = fetchDynamic

// ParseMode maps a flag or config value to a Mode. The empty string is auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeStatic:
		return ModeStatic, nil
	case ModeDynamic:
		return ModeDynamic, nil
	default:
		return "", fmt.Errorf("invalid mode: %s", s)
	}
}

func Fetch(ctx context.Context, opts Options) (Result, error) {
	if opts.URL == "" {
		return Result{}, errors.New("url is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}

	switch opts.Mode {
	case ModeStatic:
		html, err := staticFetch(ctx, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{HTML: html, FinalMode: ModeStatic, SourceInfo: "static"}, nil
	case ModeDynamic:
		html, err := dynamicFetch(ctx, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{HTML: html, FinalMode: ModeDynamic, SourceInfo: "dynamic"}, nil
	case ModeAuto:
		html, err := staticFetch(ctx, opts)
		if err == nil && !needsBrowser(html, opts.ContentSelector) {
			return Result{HTML: html, FinalMode: ModeStatic, SourceInfo: "auto:static"}, nil
		}
		html, derr := dynamicFetch(ctx, opts)
		if derr != nil {
			if err != nil {
				return Result{}, fmt.Errorf("static failed: %v; dynamic failed: %w", err, derr)
			}
			return Result{}, derr
		}
		return Result{HTML: html, FinalMode: ModeDynamic, SourceInfo: "auto:dynamic"}, nil
	default:
		return Result{}, fmt.Errorf("unknown mode: %s", opts.Mode)
	}
}

func fetchStatic(ctx context.Context, opts Options) (string, error) {
	if err := waitForRateLimit(ctx, opts.RateLimitPerSecond); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if cookie := buildCookieHeader(opts.Cookies); cookie != "" {
		req.Header.Add("Cookie", cookie)
	}

	client := &http.Client{Timeout: opts.Timeout}
	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return "", fmt.Errorf("invalid proxy url: %w", err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("static fetch timed out after %s", opts.Timeout)
		}
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// buildCookieHeader joins cookies in key order so requests are reproducible.
func buildCookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cookies))
	for k := range cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+cookies[k])
	}
	return strings.Join(parts, "; ")
}

func waitForRateLimit(ctx context.Context, ratePerSecond float64) error {
	if ratePerSecond <= 0 {
		return nil
	}
	interval := time.Duration(float64(time.Second) / ratePerSecond)
	if interval <= 0 {
		return nil
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// mountPoints are the containers client-side frameworks render into.
const mountPoints = "#root, #app, #__next, [data-reactroot], [ng-app]"

// needsBrowser reports whether a static response lacks the markup a
// conversion would work on: the content selector has no match, the body
// holds nothing but scripts, or a framework mount point is still empty.
func needsBrowser(html, contentSelector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return true
	}
	if strings.TrimSpace(contentSelector) != "" && doc.Find(contentSelector).Length() == 0 {
		return true
	}

	body := doc.Find("body")
	body.Find("script, style, noscript, template").Remove()
	if body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "" {
		return true
	}

	empty := false
	body.Find(mountPoints).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		empty = s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == ""
		return !empty
	})
	return empty
}
