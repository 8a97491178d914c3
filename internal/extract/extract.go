// Package extract turns one fetched transcript page into a Speech record.
// All field locations are structural: the archive renders every document
// with the same Drupal class names, so a missing marker means the page is
// not a transcript (or the markup changed) and the document is skipped.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"presidency_scraper/internal/models"
)

const (
	textSelector     = "div.field-docs-content"
	dateSelector     = "span.date-display-single"
	titleSelector    = "div.field-ds-doc-title"
	speakerSelector  = "h3.diet-title"
	citationSelector = "p.ucsbapp_citation"
	stateSelector    = "div.field-spot-state"

	categoryContainer = "div.menu-block-wrapper.menu-block-7.menu-name-menu-doc-cat-menu"
	categoryLink      = ".dropdown-toggle"
)

// MissingFieldError reports a required field that could not be located on
// the page. The document is skipped, not the run.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q not found on page", e.Field)
}

// Parse extracts all metadata fields from a transcript page. Text, date,
// title, speaker and citation are required; state is optional and falls
// back to models.Unknown, as does the city derived from the title.
func Parse(doc *goquery.Document) (*models.Speech, error) {
	text, err := requiredField(doc, textSelector, models.FieldText)
	if err != nil {
		return nil, err
	}
	date, err := requiredField(doc, dateSelector, models.FieldDate)
	if err != nil {
		return nil, err
	}
	title, err := requiredField(doc, titleSelector, models.FieldTitle)
	if err != nil {
		return nil, err
	}
	speaker, err := requiredField(doc, speakerSelector, models.FieldSpeaker)
	if err != nil {
		return nil, err
	}
	citation, err := requiredField(doc, citationSelector, models.FieldCitation)
	if err != nil {
		return nil, err
	}

	state := models.Unknown
	if sel := doc.Find(stateSelector).First(); sel.Length() > 0 {
		state = formatString(sel.Text())
	}

	return &models.Speech{
		Text:       text,
		Date:       date,
		Title:      title,
		Speaker:    speaker,
		Citation:   citation,
		State:      state,
		City:       CityFromTitle(title, state),
		Categories: categories(doc),
	}, nil
}

func requiredField(doc *goquery.Document, selector, name string) (string, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", &MissingFieldError{Field: name}
	}
	value := formatString(sel.Text())
	if value == "" {
		return "", &MissingFieldError{Field: name}
	}
	return value, nil
}

// CityFromTitle guesses the city from titles shaped like
// "Remarks in Columbus, Ohio". The rule is a string heuristic, not a
// geocoder: when the state is unknown or the title does not end with it,
// the answer is models.Unknown, never an error.
func CityFromTitle(title, state string) string {
	if state == "" || state == models.Unknown {
		return models.Unknown
	}
	if !strings.HasSuffix(title, state) {
		return models.Unknown
	}
	parts := strings.Split(title, " in ")
	address := parts[len(parts)-1]
	return strings.TrimSpace(strings.Split(address, ",")[0])
}

// categories collects the title attribute of every category menu entry.
// Entries without the attribute are skipped.
func categories(doc *goquery.Document) string {
	var labels []string
	doc.Find(categoryContainer).First().Find(categoryLink).Each(func(_ int, s *goquery.Selection) {
		if label, ok := s.Attr("title"); ok && label != "" {
			labels = append(labels, label)
		}
	})
	return strings.Join(labels, ", ")
}

// formatString strips leading/trailing newlines, then whitespace.
func formatString(s string) string {
	s = strings.Trim(s, "\n")
	return strings.TrimSpace(s)
}
