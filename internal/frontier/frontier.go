// Package frontier reads the archive's paginated search-result listings:
// which documents a results page links to, and where the next page is.
// It is pure over an already-fetched parse tree; deduplication against the
// visited-link log is the orchestrator's job.
package frontier

import (
	"github.com/PuerkitoBio/goquery"
)

const (
	rowSelector      = "tr.even, tr.odd"
	titleCell        = "td.views-field-title a"
	nextPageSelector = `a[title="Go to next page"]`
)

// Listing returns one absolute document URL per result row. Rows without a
// title link are skipped.
func Listing(doc *goquery.Document, baseURL string) []string {
	var links []string
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Find(titleCell).First().Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, baseURL+href)
	})
	return links
}

// NextPage locates the pagination control. ok is false once the last page
// is reached.
func NextPage(doc *goquery.Document, baseURL string) (next string, ok bool) {
	href, found := doc.Find(nextPageSelector).First().Attr("href")
	if !found {
		return "", false
	}
	return baseURL + href, true
}
