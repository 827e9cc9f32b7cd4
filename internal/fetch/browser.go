package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// browserConfig is everything fixed for the lifetime of one browser
// session. Headers apply to every request the page makes, not only the
// document request.
type browserConfig struct {
	Headless  bool
	ProxyURL  string
	UserAgent string
	Headers   map[string]string
}

type launcher interface {
	Launch(cfg browserConfig) (session, error)
}

// session is a single page in a freshly launched browser.
type session interface {
	// Open navigates to url and returns the HTTP status of the document.
	Open(url string, timeout time.Duration) (int, error)
	// WaitAttached waits until selector matches an element in the DOM,
	// visible or not.
	WaitAttached(selector string, timeout time.Duration) error
	Content() (string, error)
	Close() error
}

type playwrightLauncher struct{}

func (playwrightLauncher) Launch(cfg browserConfig) (session, error) {
	if err := playwright.Install(&playwright.RunOptions{}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	s := &playwrightSession{pw: pw}

	launchOpts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(cfg.Headless)}
	if cfg.ProxyURL != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: cfg.ProxyURL}
	}
	if s.browser, err = pw.Chromium.Launch(launchOpts); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	if s.browserCtx, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:        playwright.String(cfg.UserAgent),
		ExtraHttpHeaders: cfg.Headers,
	}); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	if s.page, err = s.browserCtx.NewPage(); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

type playwrightSession struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	page       playwright.Page
}

func (s *playwrightSession) Open(url string, timeout time.Duration) (int, error) {
	resp, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return 0, err
	}
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

func (s *playwrightSession) WaitAttached(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (s *playwrightSession) Content() (string, error) {
	return s.page.Content()
}

// Close releases the page, context, browser and driver, in that order,
// skipping whatever was never created.
func (s *playwrightSession) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.Close())
	}
	if s.browserCtx != nil {
		errs = append(errs, s.browserCtx.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	errs = append(errs, s.pw.Stop())
	return errors.Join(errs...)
}

func fetchDynamic(ctx context.Context, opts Options) (string, error) {
	return fetchDynamicWith(ctx, opts, playwrightLauncher{})
}

func fetchDynamicWith(ctx context.Context, opts Options, l launcher) (string, error) {
	if err := waitForRateLimit(ctx, opts.RateLimitPerSecond); err != nil {
		return "", err
	}

	s, err := l.Launch(browserConfig{
		Headless:  opts.Headless,
		ProxyURL:  opts.ProxyURL,
		UserAgent: opts.UserAgent,
		Headers:   requestHeaders(opts),
	})
	if err != nil {
		return "", err
	}
	defer func() {
		_ = s.Close()
	}()

	status, err := s.Open(opts.URL, opts.Timeout)
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return "", fmt.Errorf("dynamic fetch timed out after %s (try --timeout or --wait-for)", opts.Timeout)
		}
		return "", err
	}
	if status >= 400 {
		return "", fmt.Errorf("http status %d", status)
	}

	// Without an explicit --wait-for, the subtree that will be converted is
	// the thing worth waiting for.
	selector := opts.WaitForSelector
	if selector == "" {
		selector = opts.ContentSelector
	}
	if selector != "" {
		if err := s.WaitAttached(selector, opts.Timeout); err != nil {
			return "", fmt.Errorf("selector %q never appeared: %w", selector, err)
		}
	}

	return s.Content()
}

// requestHeaders merges configured headers with the cookie header. An
// explicit Cookie header is kept and extended.
func requestHeaders(opts Options) map[string]string {
	headers := make(map[string]string, len(opts.Headers)+1)
	for key, value := range opts.Headers {
		headers[key] = value
	}
	if cookie := buildCookieHeader(opts.Cookies); cookie != "" {
		if existing := strings.TrimSpace(headers["Cookie"]); existing != "" {
			headers["Cookie"] = existing + "; " + cookie
		} else {
			headers["Cookie"] = cookie
		}
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
