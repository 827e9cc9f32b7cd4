package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"html2swim/internal/crawler"
)

func WriteCrawlIndex(outputDir string, index crawler.CrawlIndex, silent bool) error {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	indexPath := filepath.Join(outputDir, CrawlFile)
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(indexPath, data, 0600); err != nil {
		return err
	}

	if !silent {
		fmt.Printf("Wrote crawl index: %s (%d pages, %d elements)\n",
			indexPath, index.PagesCrawled, index.TotalElements)
	}

	return nil
}

func ReadCrawlIndex(outputDir string) (crawler.CrawlIndex, error) {
	if outputDir == "" {
		outputDir = "."
	}
	indexPath := filepath.Join(outputDir, CrawlFile)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return crawler.CrawlIndex{}, err
	}
	var index crawler.CrawlIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return crawler.CrawlIndex{}, err
	}
	return index, nil
}
