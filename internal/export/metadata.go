// Package export renders the persisted corpus into its delivery formats:
// a metadata table (CSV and spreadsheet), a zip archive of plain-text
// speeches with a source index, and an analysis workbook. Exports are pure
// consumers of the store; they never touch the network.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"presidency_scraper/internal/models"
	"presidency_scraper/internal/population"
)

// sourceDateLayout is how the archive renders dates ("November 4, 2008").
const sourceDateLayout = "January 2, 2006"

var metadataColumns = []string{
	"speaker", "date", "state", "city", "population",
	"title", "citation", "categories", "link",
}

// sortedURLs fixes the row/entry order of every export so repeated exports
// of the same store are identical.
func sortedURLs(corpus models.Corpus) []string {
	urls := make([]string, 0, len(corpus))
	for url := range corpus {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// normalizeDate re-renders a source date label as ISO 8601. Labels that do
// not parse are passed through untouched.
func normalizeDate(label string) string {
	t, err := time.Parse(sourceDateLayout, label)
	if err != nil {
		return label
	}
	return t.Format("2006-01-02")
}

func metadataRows(corpus models.Corpus, pop *population.Index) [][]string {
	rows := make([][]string, 0, len(corpus))
	for _, url := range sortedURLs(corpus) {
		s := corpus[url]
		rows = append(rows, []string{
			s.Speaker,
			normalizeDate(s.Date),
			s.State,
			s.City,
			fmt.Sprintf("%d", pop.Lookup(s.State, s.City)),
			s.Title,
			s.Citation,
			s.Categories,
			url,
		})
	}
	return rows
}

// Metadata writes the per-document metadata table as CSV and as a
// spreadsheet, enriched with the census population of the speech location.
func Metadata(corpus models.Corpus, pop *population.Index, csvPath, xlsxPath string) error {
	rows := metadataRows(corpus, pop)

	if err := writeCSV(csvPath, rows); err != nil {
		return err
	}
	return writeXLSX(xlsxPath, rows)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(metadataColumns); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Metadata"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &metadataColumns); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
