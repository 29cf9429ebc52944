package engine

import (
	"strconv"
	"strings"

	"github.com/tartampluch/go-refill/internal/config"
)

// Parse turns delimited patient-list text into records.
//
// Malformed rows never fail the parse: they are dropped and reported in
// ParseResult.Skipped with their line index. Blank lines are ignored entirely.
// Fields are split on every comma, so a comma inside a quoted name or address
// shifts the columns; spreadsheet exports must not contain such commas.
func Parse(text string) ParseResult {
	var res ParseResult
	headerChecked := false

	// Splitting on "\n" and trimming each line also handles "\r\n".
	for i, raw := range strings.Split(text, config.LineSeparator) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if !headerChecked {
			headerChecked = true
			if isHeader(line) {
				continue
			}
		}

		rec, reason := parseLine(line)
		if reason != "" {
			res.Skipped = append(res.Skipped, SkippedRow{Line: i, Reason: reason})
			continue
		}
		rec.Line = i
		res.Records = append(res.Records, rec)
	}

	return res
}

// isHeader reports whether the first non-empty line looks like a column header.
func isHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, config.HeaderMarkerName) &&
		strings.Contains(lower, config.HeaderMarkerDays)
}

// parseLine maps the first four columns to a record, or returns a skip reason.
func parseLine(line string) (InputRecord, string) {
	cols := strings.Split(line, config.ColumnSeparator)
	if len(cols) < config.MinColumns {
		return InputRecord{}, config.SkipTooFewColumns
	}

	name := cleanField(cols[config.ColName])
	contact := cleanField(cols[config.ColContact])
	dateStr := cleanField(cols[config.ColDispenseDate])
	daysStr := cleanField(cols[config.ColDays])

	if name == "" {
		return InputRecord{}, config.SkipMissingName
	}
	if dateStr == "" {
		return InputRecord{}, config.SkipMissingDate
	}

	days, ok := leadingInt(daysStr)
	if !ok {
		return InputRecord{}, config.SkipInvalidDays
	}
	if days < 0 {
		return InputRecord{}, config.SkipNegativeDays
	}

	first, err := ParseCivilDate(dateStr)
	if err != nil {
		return InputRecord{}, config.SkipInvalidDate
	}

	return InputRecord{
		Name:              name,
		ContactAddress:    contact,
		FirstDispenseDate: first,
		DurationDays:      days,
	}, ""
}

// leadingInt reads an optional sign and the run of digits that starts s.
// Anything after the digits is ignored, so "28天", "28.0" and "28 days" are 28.
func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// cleanField trims whitespace and the quotes spreadsheet exports put around cells.
func cleanField(field string) string {
	field = strings.TrimSpace(field)
	field = strings.TrimPrefix(field, config.FieldQuote)
	return strings.TrimSuffix(field, config.FieldQuote)
}
