// Package model defines the core domain types shared across the application.
package model

import (
	"regexp"
)

// datePattern is the canonical on-the-wire date shape for records.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ProcurementRecord is a single row of procurement spend parsed from an
// uploaded spreadsheet. Records are immutable once produced by the parser
// and are discarded after an upload commits; nothing persists them locally.
type ProcurementRecord struct {
	Subcategory *string `json:"subcategory"`
	Location    *string `json:"location"`
	Supplier    string  `json:"supplier"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
}

// HasValidDate reports whether the record's date is in canonical
// YYYY-MM-DD form.
func (r *ProcurementRecord) HasValidDate() bool {
	return datePattern.MatchString(r.Date)
}
