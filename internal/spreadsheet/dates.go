package spreadsheet

import (
	"strconv"
	"strings"
	"time"
)

// serialEpoch is the zero point of spreadsheet serial dates. Serial 1 is
// 1900-01-01 under the 1900 date system; using Dec 30 1899 as the epoch
// absorbs the engine's historical leap-year quirk, so serial 45292 lands
// on 2024-01-01.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// textDateLayouts are date shapes accepted from text cells, tried in order.
var textDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006-01-02T15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
}

// NormalizeDate converts a cell value to canonical YYYY-MM-DD form. It
// accepts spreadsheet serial numbers and a range of textual layouts.
// Values it cannot interpret are returned unchanged with ok=false; the
// validation step decides what to do with them.
func NormalizeDate(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	// Serial numbers arrive as bare numerics when the sheet is read raw.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial <= 0 || serial > 2958465 { // 9999-12-31
			return raw, false
		}
		days := int(serial)
		return serialEpoch.AddDate(0, 0, days).Format("2006-01-02"), true
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	return raw, false
}
