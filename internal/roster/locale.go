package roster

import (
	"time"

	"golang.org/x/text/language"
)

// dateLayout is the display format for timestamps.
const dateLayout = "January 2, 2006 03:04 PM"

// Placeholders are the locale strings shown for absent fields.
type Placeholders struct {
	Tag          language.Tag
	Unknown      string
	NotAvailable string
	months       [12]string
}

var (
	english = Placeholders{
		Tag:          language.English,
		Unknown:      "Unknown",
		NotAvailable: "N/A",
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
	}
	french = Placeholders{
		Tag:          language.French,
		Unknown:      "Inconnu",
		NotAvailable: "N/D",
		months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	}
)

var (
	supported = []Placeholders{english, french}
	matcher   = language.NewMatcher([]language.Tag{english.Tag, french.Tag})
)

// Lookup picks the placeholders for an Accept-Language style locale string.
// Unknown or empty locales fall back to English.
func Lookup(locale string) Placeholders {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return english
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return english
	}
	return supported[index]
}

// FormatDate renders an ISO date for display. Empty input yields the
// not-available placeholder and unparsable input is returned unchanged.
func (p Placeholders) FormatDate(raw string) string {
	if raw == "" || raw == english.NotAvailable {
		return p.NotAvailable
	}
	t, ok := parseDate(raw)
	if !ok {
		return raw
	}
	return p.formatTime(t)
}

func (p Placeholders) formatTime(t time.Time) string {
	formatted := t.Format(dateLayout)
	if p.Tag == english.Tag {
		return formatted
	}
	// Only the month name is localized; the layout stays fixed.
	month := english.months[t.Month()-1]
	return p.months[t.Month()-1] + formatted[len(month):]
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
