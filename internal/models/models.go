package models

// Unknown marks a location field that could not be determined from the page.
const Unknown = "unknown"

// Field names as they appear in the persisted store and in filter rules.
const (
	FieldText       = "text"
	FieldDate       = "date"
	FieldTitle      = "title"
	FieldSpeaker    = "speaker"
	FieldCitation   = "citation"
	FieldState      = "state"
	FieldCity       = "city"
	FieldCategories = "categories"
)

var fieldNames = []string{
	FieldText, FieldDate, FieldTitle, FieldSpeaker,
	FieldCitation, FieldState, FieldCity, FieldCategories,
}

// KnownField reports whether name is one of the scraped metadata fields.
func KnownField(name string) bool {
	for _, f := range fieldNames {
		if f == name {
			return true
		}
	}
	return false
}

// Speech is one scraped transcript page. Immutable once extracted.
type Speech struct {
	Text       string `json:"text" bson:"text"`
	Date       string `json:"date" bson:"date"`
	Title      string `json:"title" bson:"title"`
	Speaker    string `json:"speaker" bson:"speaker"`
	Citation   string `json:"citation" bson:"citation"`
	State      string `json:"state" bson:"state"`
	City       string `json:"city" bson:"city"`
	Categories string `json:"categories" bson:"categories"`
}

// Field returns the value of the named metadata field.
func (s Speech) Field(name string) string {
	switch name {
	case FieldText:
		return s.Text
	case FieldDate:
		return s.Date
	case FieldTitle:
		return s.Title
	case FieldSpeaker:
		return s.Speaker
	case FieldCitation:
		return s.Citation
	case FieldState:
		return s.State
	case FieldCity:
		return s.City
	case FieldCategories:
		return s.Categories
	}
	return ""
}

// Corpus maps the absolute document URL to its scraped record.
type Corpus map[string]Speech
