package engine

import "time"

// InputRecord is one valid row of the patient list.
type InputRecord struct {
	Name           string
	ContactAddress string

	// FirstDispenseDate is a civil date (midnight UTC).
	FirstDispenseDate time.Time

	// DurationDays is the number of days one dispensed supply covers.
	DurationDays int

	// Line is the zero-based index of the source line, used to keep
	// identifiers distinct when the same patient appears twice.
	Line int
}

// SkippedRow explains why a non-blank line produced no record.
type SkippedRow struct {
	Line   int
	Reason string
}

// ParseResult is the output of Parse.
type ParseResult struct {
	Records []InputRecord
	Skipped []SkippedRow
}
