package model

import (
	"fmt"
	"time"
)

// DateRange bounds a filter by date. A nil bound means the side is open.
type DateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// IsSet reports whether either bound is present.
func (d DateRange) IsSet() bool {
	return d.Start != nil || d.End != nil
}

// AmountRange bounds a filter by spend amount. A nil bound means the side
// is open.
type AmountRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// IsSet reports whether either bound is present.
func (a AmountRange) IsSet() bool {
	return a.Min != nil || a.Max != nil
}

// Filters is the canonical filter shape shared with the backend. An absent
// constraint is a nil bound or an empty slice; keys are always serialized.
type Filters struct {
	DateRange     DateRange   `json:"dateRange"`
	Categories    []string    `json:"categories"`
	Subcategories []string    `json:"subcategories"`
	Suppliers     []string    `json:"suppliers"`
	Locations     []string    `json:"locations"`
	Years         []int       `json:"years"`
	AmountRange   AmountRange `json:"amountRange"`
}

// NewFilters returns an empty filter set with all slices allocated so the
// serialized form carries empty arrays rather than nulls.
func NewFilters() Filters {
	return Filters{
		Categories:    []string{},
		Subcategories: []string{},
		Suppliers:     []string{},
		Locations:     []string{},
		Years:         []int{},
	}
}

// ActiveCount counts constrained dimensions. Each range counts once when
// either bound is set; each non-empty list counts once regardless of length.
func (f Filters) ActiveCount() int {
	count := 0
	if f.DateRange.IsSet() {
		count++
	}
	if f.AmountRange.IsSet() {
		count++
	}
	if len(f.Categories) > 0 {
		count++
	}
	if len(f.Subcategories) > 0 {
		count++
	}
	if len(f.Suppliers) > 0 {
		count++
	}
	if len(f.Locations) > 0 {
		count++
	}
	if len(f.Years) > 0 {
		count++
	}
	return count
}

// FilterUpdate is a partial filter change. Nil fields leave the matching
// dimension untouched, so updating one dimension never clobbers another.
type FilterUpdate struct {
	DateRange     *DateRange
	Categories    *[]string
	Subcategories *[]string
	Suppliers     *[]string
	Locations     *[]string
	Years         *[]int
	AmountRange   *AmountRange
}

// Merge applies a partial update to a copy of f and returns the result.
func (f Filters) Merge(u FilterUpdate) Filters {
	merged := f
	if u.DateRange != nil {
		merged.DateRange = *u.DateRange
	}
	if u.Categories != nil {
		merged.Categories = *u.Categories
	}
	if u.Subcategories != nil {
		merged.Subcategories = *u.Subcategories
	}
	if u.Suppliers != nil {
		merged.Suppliers = *u.Suppliers
	}
	if u.Locations != nil {
		merged.Locations = *u.Locations
	}
	if u.Years != nil {
		merged.Years = *u.Years
	}
	if u.AmountRange != nil {
		merged.AmountRange = *u.AmountRange
	}
	return merged
}

// QuickRange names a relative date range computed at application time.
type QuickRange string

// Supported quick ranges.
const (
	QuickLast7Days  QuickRange = "last-7-days"
	QuickLast30Days QuickRange = "last-30-days"
	QuickLast90Days QuickRange = "last-90-days"
	QuickThisYear   QuickRange = "this-year"
	QuickLastYear   QuickRange = "last-year"
)

const dateLayout = "2006-01-02"

// Resolve computes the concrete date range for q relative to now.
// "This year" deliberately leaves the end bound open (through present),
// while "last year" is a closed calendar-year range.
func (q QuickRange) Resolve(now time.Time) (DateRange, error) {
	switch q {
	case QuickLast7Days:
		return lastNDays(now, 7), nil
	case QuickLast30Days:
		return lastNDays(now, 30), nil
	case QuickLast90Days:
		return lastNDays(now, 90), nil
	case QuickThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
		return DateRange{Start: &start}, nil
	case QuickLastYear:
		year := now.Year() - 1
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
		end := time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location()).Format(dateLayout)
		return DateRange{Start: &start, End: &end}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown quick range: %q", string(q))
	}
}

func lastNDays(now time.Time, n int) DateRange {
	start := now.AddDate(0, 0, -n).Format(dateLayout)
	end := now.Format(dateLayout)
	return DateRange{Start: &start, End: &end}
}
