package spreadsheet

import (
	"fmt"
	"strings"
)

// MissingColumnsError reports required headers absent from an uploaded
// spreadsheet. The whole parse fails; no partial results are produced.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// UnsupportedFormatError reports a file that is not a recognized
// spreadsheet or CSV type.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s (expected .csv, .xlsx or .xls)", e.Filename)
}
