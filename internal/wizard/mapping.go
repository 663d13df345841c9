package wizard

import (
	"strings"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

// fieldSynonyms maps normalized source-header spellings commonly seen in
// exports from source systems to their target fields.
var fieldSynonyms = map[string]string{
	"vendor":          "Supplier",
	"vendorname":      "Supplier",
	"suppliername":    "Supplier",
	"merchant":        "Supplier",
	"spendcategory":   "Category",
	"commoditygroup":  "Category",
	"subcat":          "Subcategory",
	"subcategoryname": "Subcategory",
	"total":           "Amount",
	"spend":           "Amount",
	"totalamount":     "Amount",
	"value":           "Amount",
	"invoicedate":     "Date",
	"transactiondate": "Date",
	"orderdate":       "Date",
	"site":            "Location",
	"region":          "Location",
	"city":            "Location",
}

// AutoDetectMapping proposes a source-column to target-field assignment
// for the given headers. Matching is case-insensitive exact first, then
// shape-insensitive (spaces, underscores and hyphens stripped), then via
// a small synonym table. Unresolved headers are left out of the result;
// the user assigns or ignores them before proceeding.
func AutoDetectMapping(headers []string) model.ColumnMapping {
	mapping := make(model.ColumnMapping)
	claimed := make(map[string]bool, len(model.TargetFields))

	assign := func(source, target string) {
		if !claimed[target] {
			mapping[source] = target
			claimed[target] = true
		}
	}

	// Exact (case-insensitive) matches win before looser ones.
	for _, header := range headers {
		for _, field := range model.TargetFields {
			if strings.EqualFold(header, field) {
				assign(header, field)
				break
			}
		}
	}

	for _, header := range headers {
		if _, done := mapping[header]; done {
			continue
		}
		normalized := normalizeHeader(header)
		for _, field := range model.TargetFields {
			if normalized == normalizeHeader(field) {
				assign(header, field)
				break
			}
		}
		if _, done := mapping[header]; done {
			continue
		}
		if field, ok := fieldSynonyms[normalized]; ok {
			assign(header, field)
		}
	}

	return mapping
}

func normalizeHeader(header string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(header)))
}
