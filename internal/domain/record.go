package domain

import (
	"strings"
	"time"
)

// Kind identifies which upstream feed a record belongs to.
type Kind string

const (
	KindEnergy  Kind = "energy"
	KindWeather Kind = "weather"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindEnergy || k == KindWeather
}

// DateLayout is the canonical calendar-date format used in snapshots,
// merged output, and report artifacts.
const DateLayout = "2006-01-02"

// RawRecord is one normalized row produced by the ingest parser.
// Date is a UTC calendar date (midnight); Fields holds the remaining
// columns keyed by their source names, healed to canonical names when
// the record is merged into a master store.
type RawRecord struct {
	Kind   Kind
	City   string
	Date   time.Time
	Fields map[string]string
}

// dateLayouts are the accepted input formats, most specific first.
// Upstream feeds are inconsistent: NOAA daily observations use
// "2006-01-02T15:04:05", EIA hourly periods use "2006-01-02T15" or a
// plain date, and manually exported CSVs show up with slashes.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate coerces a raw date string to a UTC calendar date,
// discarding any time-of-day component. The zero time and false are
// returned when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return DateOf(t), true
	}
	return time.Time{}, false
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
