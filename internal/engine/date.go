package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-refill/internal/config"
)

// CivilDate drops the time of day and the zone of t, keeping its calendar date
// as seen in t's own location. Civil dates are represented as midnight UTC so
// that day arithmetic is never perturbed by DST.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseCivilDate parses a YYYY-MM-DD string. Impossible dates (2025-02-30) are rejected.
func ParseCivilDate(value string) (time.Time, error) {
	t, err := time.Parse(config.DateFormatISO, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	return t, nil
}

// AddDays shifts a civil date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}
