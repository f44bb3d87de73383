package export

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// xlsxHeader is the fixed 9-column spreadsheet contract (the maps link is
// clipboard-only).
var xlsxHeader = []string{
	"Name", "Address", "Rating", "Phone", "Website",
	"Email", "Instagram", "WhatsApp", "Website Quality",
}

const sheetName = "Leads"

// Filename returns the date-stamped download name for an export generated
// at the given time, e.g. leads_export_2026-08-28.xlsx.
func Filename(now time.Time) string {
	return "leads_export_" + now.Format("2006-01-02") + ".xlsx"
}

// WriteXLSX writes leads as a single-sheet workbook to w.
func WriteXLSX(w io.Writer, leads []model.Lead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range xlsxHeader {
		header.AddCell().SetString(col)
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(lead.Name)
		row.AddCell().SetString(lead.Address)
		if lead.Rating != nil {
			row.AddCell().SetFloat(*lead.Rating)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(deref(lead.Phone))
		row.AddCell().SetString(deref(lead.Website))
		row.AddCell().SetString(deref(lead.Email))
		row.AddCell().SetString(deref(lead.Instagram))
		row.AddCell().SetString(deref(lead.WhatsApp))
		row.AddCell().SetString(string(lead.WebsiteQuality))
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}
