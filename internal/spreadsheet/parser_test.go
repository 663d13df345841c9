package spreadsheet

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

const csvTemplate = `Supplier,Category,Subcategory,Amount,Date,Location
Acme Corp,IT Hardware,Laptops,1250.50,2024-01-15,Austin
Globex,Facilities,Cleaning,480,2024-02-01,Chicago
Initech,IT Hardware,,99.99,2024-03-20,
`

func TestParser_ParseCSV(t *testing.T) {
	p := NewParser()

	records, err := p.Parse(context.Background(), strings.NewReader(csvTemplate), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Row order preserved.
	assert.Equal(t, "Acme Corp", records[0].Supplier)
	assert.Equal(t, "Globex", records[1].Supplier)
	assert.Equal(t, "Initech", records[2].Supplier)

	assert.Equal(t, "IT Hardware", records[0].Category)
	require.NotNil(t, records[0].Subcategory)
	assert.Equal(t, "Laptops", *records[0].Subcategory)
	assert.InDelta(t, 1250.50, records[0].Amount, 0.001)
	assert.Equal(t, "2024-01-15", records[0].Date)
	require.NotNil(t, records[0].Location)
	assert.Equal(t, "Austin", *records[0].Location)

	// Empty optional cells surface as nil, not empty strings.
	assert.Nil(t, records[2].Subcategory)
	assert.Nil(t, records[2].Location)
}

func TestParser_MissingColumns(t *testing.T) {
	p := NewParser()
	csv := "Supplier,Amount,Date\nAcme,100,2024-01-01\n"

	records, err := p.Parse(context.Background(), strings.NewReader(csv), FormatCSV)
	require.Error(t, err)
	assert.Nil(t, records)

	var missingErr *MissingColumnsError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"Category", "Subcategory", "Location"}, missingErr.Missing)
}

func TestParser_HeadersOnly(t *testing.T) {
	p := NewParser()
	csv := "Supplier,Category,Subcategory,Amount,Date,Location\n"

	records, err := p.Parse(context.Background(), strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParser_FirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeHeaderRow(t, f, sheet)
	setRow(t, f, sheet, 2, []any{"Acme", "IT Hardware", "Laptops", 1250.5, "2024-01-15", "Austin"})

	// A second sheet full of different data must be ignored.
	_, err := f.NewSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Extra", "A1", "Supplier"))
	require.NoError(t, f.SetCellValue("Extra", "A2", "ShouldNotAppear"))

	records := parseWorkbook(t, f)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Supplier)
}

func TestParser_SerialDateNormalization(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	writeHeaderRow(t, f, sheet)
	setRow(t, f, sheet, 2, []any{"Acme", "IT Hardware", "", 100, 45292, ""})

	records := parseWorkbook(t, f)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0].Date)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, records[0].Date)
}

func TestParser_AmountCoercion(t *testing.T) {
	p := NewParser()
	csv := `Supplier,Category,Subcategory,Amount,Date,Location
Acme,IT,,"$1,250.50",2024-01-01,
Globex,IT,,(500),2024-01-02,
Initech,IT,,not-a-number,2024-01-03,
`
	records, err := p.Parse(context.Background(), strings.NewReader(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.InDelta(t, 1250.50, records[0].Amount, 0.001)
	assert.InDelta(t, -500.0, records[1].Amount, 0.001)
	// Malformed amounts are zero at parse time; validation flags them later.
	assert.InDelta(t, 0.0, records[2].Amount, 0.001)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{filename: "spend.xlsx", want: FormatXLSX},
		{filename: "SPEND.XLSX", want: FormatXLSX},
		{filename: "legacy.xls", want: FormatXLSX},
		{filename: "spend.csv", want: FormatCSV},
		{filename: "spend.pdf", wantErr: true},
		{filename: "spend", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				var unsupported *UnsupportedFormatError
				require.ErrorAs(t, err, &unsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "45292", want: "2024-01-01", wantOK: true},
		{raw: "2024-06-15", want: "2024-06-15", wantOK: true},
		{raw: "06/15/2024", want: "2024-06-15", wantOK: true},
		{raw: "2024/06/15", want: "2024-06-15", wantOK: true},
		{raw: "Jan 2, 2024", want: "2024-01-02", wantOK: true},
		{raw: "garbage", want: "garbage", wantOK: false},
		{raw: "", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeDate(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeHeaderRow(t *testing.T, f *excelize.File, sheet string) {
	t.Helper()
	for i, h := range RequiredColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
}

func setRow(t *testing.T, f *excelize.File, sheet string, row int, values []any) {
	t.Helper()
	for i, v := range values {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
}

func parseWorkbook(t *testing.T, f *excelize.File) []model.ProcurementRecord {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := NewParser().Parse(context.Background(), bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	return records
}
