package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

type SitemapOptions struct {
	UserAgent string
	Timeout   time.Duration
}

const (
	sitemapIndexLocs = "//*[local-name()='sitemapindex']/*[local-name()='sitemap']/*[local-name()='loc']"
	urlSetLocs       = "//*[local-name()='urlset']/*[local-name()='url']/*[local-name()='loc']"
)

// ParseSitemap returns the page URLs listed in a sitemap. A sitemap index
// is followed one level at a time; child sitemaps that fail are skipped.
func ParseSitemap(ctx context.Context, sitemapURL string, opts SitemapOptions) ([]string, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	body, err := fetchSitemapContent(ctx, sitemapURL, opts)
	if err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap XML: %w", err)
	}

	if children := locs(doc, sitemapIndexLocs); len(children) > 0 {
		var allURLs []string
		for _, child := range children {
			urls, err := ParseSitemap(ctx, child, opts)
			if err != nil {
				continue
			}
			allURLs = append(allURLs, urls...)
		}
		return allURLs, nil
	}

	return locs(doc, urlSetLocs), nil
}

func locs(doc *xmlquery.Node, expr string) []string {
	nodes := xmlquery.Find(doc, expr)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		loc := strings.TrimSpace(n.InnerText())
		if loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

func fetchSitemapContent(ctx context.Context, url string, opts SitemapOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sitemap body: %w", err)
	}

	return body, nil
}
