package crawler

import (
	"sort"
	"time"
)

// CrawlIndex is the record of a crawl written next to the generated
// sources. A later run with resume enabled reads it back to skip pages
// whose content has not changed.
type CrawlIndex struct {
	BaseURL       string      `json:"base_url"`
	StartedAt     time.Time   `json:"started_at"`
	CompletedAt   time.Time   `json:"completed_at"`
	PagesCrawled  int         `json:"pages_crawled"`
	PagesFailed   int         `json:"pages_failed"`
	TotalElements int         `json:"total_elements"`
	Pages         []PageEntry `json:"pages"`
}

type PageEntry struct {
	URL         string    `json:"url"`
	File        string    `json:"file,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Elements    int       `json:"elements"`
	ContentHash string    `json:"content_hash,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// PageOutput describes what was generated for one crawled page.
type PageOutput struct {
	File     string
	Elements int
	Err      error
}

func BuildIndex(results map[string]*Result, stats Stats, baseURL string, outputs map[string]PageOutput) CrawlIndex {
	index := CrawlIndex{
		BaseURL:      baseURL,
		StartedAt:    stats.StartedAt,
		CompletedAt:  stats.CompletedAt,
		PagesCrawled: stats.PagesCrawled,
		PagesFailed:  stats.PagesFailed,
		Pages:        make([]PageEntry, 0, len(results)),
	}

	for pageURL, result := range results {
		entry := PageEntry{URL: pageURL, Status: "success"}
		if result != nil {
			entry.ContentHash = result.ContentHash
			entry.FetchedAt = result.FetchedAt
			if result.Error != nil {
				entry.Status = "error"
				entry.Error = result.Error.Error()
			}
		}
		if out, ok := outputs[pageURL]; ok && entry.Status == "success" {
			entry.File = out.File
			entry.Elements = out.Elements
			if out.Err != nil {
				entry.Status = "error"
				entry.Error = out.Err.Error()
			} else {
				index.TotalElements += out.Elements
			}
		}
		index.Pages = append(index.Pages, entry)
	}

	sort.Slice(index.Pages, func(i, j int) bool {
		return index.Pages[i].URL < index.Pages[j].URL
	})
	return index
}
