package model

import "time"

// TargetFields are the record fields an upload must populate, in display
// order. Subcategory and Location accept empty values but still need a
// source column assigned (or an explicit ignore) before validation.
var TargetFields = []string{"Supplier", "Category", "Subcategory", "Amount", "Date", "Location"}

// ColumnMapping assigns source spreadsheet columns to target record fields.
// The key is the source header exactly as it appeared in the file.
type ColumnMapping map[string]string

// IgnoredField marks a source column the user chose not to import.
const IgnoredField = "-"

// Targets returns the set of target fields covered by the mapping,
// excluding ignored columns.
func (m ColumnMapping) Targets() map[string]bool {
	targets := make(map[string]bool, len(m))
	for _, field := range m {
		if field != IgnoredField && field != "" {
			targets[field] = true
		}
	}
	return targets
}

// MissingTargets returns the required target fields with no source column
// assigned, in TargetFields order.
func (m ColumnMapping) MissingTargets() []string {
	covered := m.Targets()
	var missing []string
	for _, field := range TargetFields {
		if !covered[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// MappingTemplate is a saved column mapping, reusable across uploads from
// the same recurring file layout.
type MappingTemplate struct {
	CreatedAt time.Time     `json:"created_at"`
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Mapping   ColumnMapping `json:"mapping"`
}
