// Package export renders the visible lead list into the clipboard TSV
// payload and the downloadable spreadsheet.
package export

import (
	"strconv"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// tsvHeader is the fixed 10-column clipboard contract. Paste targets
// (Sheets, Excel) split on tabs, so cell values must never contain one.
var tsvHeader = []string{
	"Name", "Address", "Rating", "Phone", "Website",
	"Email", "Instagram", "WhatsApp", "Maps Link", "Website Quality",
}

// TSV renders leads as the tab-separated clipboard payload, header first.
func TSV(leads []model.Lead) string {
	var b strings.Builder
	b.WriteString(strings.Join(tsvHeader, "\t"))
	b.WriteByte('\n')

	for _, lead := range leads {
		row := []string{
			lead.Name,
			lead.Address,
			ratingString(lead.Rating),
			deref(lead.Phone),
			deref(lead.Website),
			deref(lead.Email),
			deref(lead.Instagram),
			deref(lead.WhatsApp),
			deref(lead.GoogleMapsURI),
			string(lead.WebsiteQuality),
		}
		for i, cell := range row {
			row[i] = sanitize(cell)
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ratingString(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

// sanitize strips the two characters that would break the grid.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
