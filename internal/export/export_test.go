package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func sampleLeads() []model.Lead {
	rating := 4.5
	phone := "+62 811 000 111"
	site := "https://tuku.example"
	maps := "https://maps.google.com/?cid=42"
	return []model.Lead{
		{
			Name:           "Warung Kopi Tuku",
			Address:        "Jl. Wijaya I No.72",
			Rating:         &rating,
			Phone:          &phone,
			Website:        &site,
			GoogleMapsURI:  &maps,
			WebsiteQuality: model.QualityGood,
		},
		{
			Name:           "No Contact Co",
			Address:        "Somewhere",
			WebsiteQuality: model.QualityBad,
		},
	}
}

func TestTSV_HeaderOrder(t *testing.T) {
	t.Parallel()

	out := TSV(nil)
	assert.Equal(t,
		"Name\tAddress\tRating\tPhone\tWebsite\tEmail\tInstagram\tWhatsApp\tMaps Link\tWebsite Quality\n",
		out)
}

func TestTSV_Rows(t *testing.T) {
	t.Parallel()

	out := TSV(sampleLeads())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	first := strings.Split(lines[1], "\t")
	require.Len(t, first, 10)
	assert.Equal(t, "Warung Kopi Tuku", first[0])
	assert.Equal(t, "4.5", first[2])
	assert.Equal(t, "https://maps.google.com/?cid=42", first[8])
	assert.Equal(t, "Good", first[9])

	second := strings.Split(lines[2], "\t")
	require.Len(t, second, 10)
	assert.Equal(t, "", second[2], "nil rating renders empty")
	assert.Equal(t, "", second[3])
	assert.Equal(t, "Bad", second[9])
}

func TestTSV_SanitizesGridBreakers(t *testing.T) {
	t.Parallel()

	out := TSV([]model.Lead{{
		Name:           "Tab\tand\nNewline",
		Address:        "A",
		WebsiteQuality: model.QualityBad,
	}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, strings.Split(lines[1], "\t"), 10)
	assert.Contains(t, lines[1], "Tab and Newline")
}

func TestFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "leads_export_2026-08-28.xlsx", Filename(now))
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleLeads()))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	header := sheet.Rows[0]
	require.Len(t, header.Cells, 9)
	assert.Equal(t, "Name", header.Cells[0].String())
	assert.Equal(t, "Website Quality", header.Cells[8].String())

	row := sheet.Rows[1]
	assert.Equal(t, "Warung Kopi Tuku", row.Cells[0].String())
	got, err := row.Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got, 1e-9)
	assert.Equal(t, "Good", row.Cells[8].String())
}

func TestWriteXLSX_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets[0].Rows, 1, "header only")
}
