// Package spreadsheet converts uploaded XLSX and CSV files into typed
// procurement records.
package spreadsheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

// Format identifies a supported input file type.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// RequiredColumns is the canonical upload template schema. Every header
// must appear, matched exactly, in row 1 of the first sheet.
var RequiredColumns = []string{"Supplier", "Category", "Subcategory", "Amount", "Date", "Location"}

// DetectFormat resolves a filename to a supported format, rejecting
// everything else with an UnsupportedFormatError.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", &UnsupportedFormatError{Filename: filepath.Base(filename)}
	}
}

// Table is the raw contents of the first sheet: the header row and every
// data row beneath it, all as strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Parser reads spreadsheet files. It is stateless and safe for reuse.
type Parser struct{}

// NewParser creates a new spreadsheet parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses the file at path into procurement records, detecting
// the format from the extension.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]model.ProcurementRecord, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(ctx, f, format)
}

// Parse reads records from r. Only the first sheet of a workbook is
// consulted regardless of how many sheets exist; this is a fixed policy.
// All required columns must be present in row 1 or the whole parse fails
// with a MissingColumnsError. A headers-only file yields an empty slice.
func (p *Parser) Parse(ctx context.Context, r io.Reader, format Format) ([]model.ProcurementRecord, error) {
	table, err := p.ReadTable(ctx, r, format)
	if err != nil {
		return nil, err
	}

	if missing := missingColumns(table.Headers); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	mapping := make(model.ColumnMapping, len(RequiredColumns))
	for _, col := range RequiredColumns {
		mapping[col] = col
	}

	records := RecordsFromTable(table, mapping)

	slog.Debug("parsed spreadsheet",
		"format", string(format),
		"rows", table.RowCount(),
		"records", len(records))

	return records, nil
}

// ReadTable reads the raw header row and data rows without applying any
// schema. The upload wizard uses this for previewing and column mapping.
func (p *Parser) ReadTable(ctx context.Context, r io.Reader, format Format) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return readWorkbook(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, &UnsupportedFormatError{Filename: string(format)}
	}
}

func readWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	// First sheet only; additional sheets are ignored by design.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return tableFromRows(rows), nil
}

func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return tableFromRows(rows), nil
}

func tableFromRows(rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Table{Headers: headers, Rows: rows[1:]}
}

func missingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// RecordsFromTable builds records from raw rows using a source-column to
// target-field mapping. Coercion is deliberately permissive: malformed
// amounts become zero and unrecognized dates pass through as-is; the
// validation step is where strictness lives.
func RecordsFromTable(table *Table, mapping model.ColumnMapping) []model.ProcurementRecord {
	index := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		index[h] = i
	}

	records := make([]model.ProcurementRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		var rec model.ProcurementRecord
		for source, target := range mapping {
			col, ok := index[source]
			if !ok || target == model.IgnoredField {
				continue
			}
			value := ""
			if col < len(row) {
				value = strings.TrimSpace(row[col])
			}
			assignField(&rec, target, value)
		}
		records = append(records, rec)
	}
	return records
}

func assignField(rec *model.ProcurementRecord, field, value string) {
	switch field {
	case "Supplier":
		rec.Supplier = value
	case "Category":
		rec.Category = value
	case "Subcategory":
		if value != "" {
			rec.Subcategory = &value
		}
	case "Amount":
		rec.Amount = parseAmount(value)
	case "Date":
		normalized, _ := NormalizeDate(value)
		rec.Date = normalized
	case "Location":
		if value != "" {
			rec.Location = &value
		}
	}
}

// parseAmount coerces a cell to a number, tolerating currency symbols and
// thousands separators. Unparseable values become zero.
func parseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	// Accounting-style negatives: (123.45)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}
