package output_test

import (
	"testing"
	"time"

	"html2swim/internal/crawler"
	"html2swim/internal/output"
)

func TestWriteAndReadCrawlIndex(t *testing.T) {
	dir := t.TempDir()
	index := crawler.CrawlIndex{
		StartedAt:     time.Now().UTC().Truncate(time.Second),
		CompletedAt:   time.Now().UTC().Truncate(time.Second),
		BaseURL:       "https://example.com",
		PagesCrawled:  2,
		TotalElements: 5,
		Pages: []crawler.PageEntry{
			{URL: "https://example.com/", File: "index.swift", Status: "success", Elements: 5, ContentHash: "abc"},
		},
	}

	if err := output.WriteCrawlIndex(dir, index, true); err != nil {
		t.Fatalf("WriteCrawlIndex error: %v", err)
	}
	got, err := output.ReadCrawlIndex(dir)
	if err != nil {
		t.Fatalf("ReadCrawlIndex error: %v", err)
	}
	if got.BaseURL != index.BaseURL || len(got.Pages) != 1 || got.Pages[0].ContentHash != "abc" {
		t.Fatalf("unexpected index: %+v", got)
	}
}

func TestReadCrawlIndex_Missing(t *testing.T) {
	if _, err := output.ReadCrawlIndex(t.TempDir()); err == nil {
		t.Fatal("expected error for missing index")
	}
}
