package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"presidency_scraper/internal/models"
)

// count is one bar of an analysis chart.
type count struct {
	Label string
	N     int
}

// tally aggregates corpus records by a label function, most frequent first;
// ties break alphabetically so the workbook is reproducible.
func tally(corpus models.Corpus, label func(models.Speech) string) []count {
	byLabel := map[string]int{}
	for _, s := range corpus {
		if l := label(s); l != "" {
			byLabel[l]++
		}
	}
	counts := make([]count, 0, len(byLabel))
	for l, n := range byLabel {
		counts = append(counts, count{Label: l, N: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].N != counts[j].N {
			return counts[i].N > counts[j].N
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

func speechMonth(s models.Speech) string {
	t, err := time.Parse(sourceDateLayout, s.Date)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// Analysis builds a workbook with speech counts per speaker, per state and
// per month, each with a column chart on its sheet.
func Analysis(corpus models.Corpus, xlsxPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		title  string
		counts []count
	}{
		{"Speakers", "Number of Speeches per Candidate", tally(corpus, func(s models.Speech) string { return s.Speaker })},
		{"States", "State of the Speech", tally(corpus, func(s models.Speech) string { return s.State })},
		{"Months", "Speeches in the Dataset per Month", tally(corpus, speechMonth)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return err
		}
		if err := writeCountSheet(f, sheet.name, sheet.title, sheet.counts); err != nil {
			return err
		}
	}

	if err := f.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("save %s: %w", xlsxPath, err)
	}
	return nil
}

func writeCountSheet(f *excelize.File, sheet, title string, counts []count) error {
	header := []string{"label", "speeches"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range counts {
		row := []interface{}{c.Label, c.N}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if len(counts) == 0 {
		return nil
	}
	last := len(counts) + 1
	return f.AddChart(sheet, "D2", &excelize.Chart{
		Type:  excelize.Col,
		Title: []excelize.RichTextRun{{Text: title}},
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, last),
		}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}
