package export

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"

	"presidency_scraper/internal/models"
)

// TextCorpus packs one plain-text file per speech into a zip archive,
// numbered speech0001.txt upward in stable URL order, plus a sources.csv
// index mapping each number back to its source URL.
func TextCorpus(corpus models.Corpus, zipPath string) error {
	file, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", zipPath, err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)

	var sources []string
	for i, url := range sortedURLs(corpus) {
		entry, err := archive.Create(fmt.Sprintf("speech%04d.txt", i+1))
		if err != nil {
			return err
		}
		if _, err := entry.Write([]byte(corpus[url].Text)); err != nil {
			return err
		}
		sources = append(sources, fmt.Sprintf("%d, %s", i+1, url))
	}

	index, err := archive.Create("sources.csv")
	if err != nil {
		return err
	}
	if _, err := index.Write([]byte(strings.Join(sources, "\n"))); err != nil {
		return err
	}

	return archive.Close()
}
