package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxRate is the top of the rating scale; a rating of MaxRate is 100%.
const MaxRate = 4

type (
	// RawRecord is one row as read from a source, before any coercion.
	RawRecord struct {
		Index int // position in the source
		Date  string
		Rate  string
	}

	// Record is a satisfaction observation with its derived fields.
	Record struct {
		Index       int
		Date        time.Time
		Rate        float64
		Year        int
		Month       int // 1-12
		Day         int
		RatePercent float64
	}
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidRate = errors.New("invalid rate")
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07", // PostgreSQL timestamptz::text
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

// ParseDate accepts the ISO-like layouts commonly found in exported datasets.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseRate coerces a rating to a number. Integers, decimals and numeric
// strings are accepted; NaN and infinities are not.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	return v, nil
}

// RatePercent rescales a rating to 0-100: 1 = 25%, 2 = 50%, 3 = 75%, 4 = 100%.
func RatePercent(rate float64) float64 {
	return rate * 100 / MaxRate
}

// Derive turns a raw row into a Record.
func Derive(raw RawRecord) (Record, error) {
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Record{}, fmt.Errorf("row %d: %w", raw.Index, err)
	}
	rate, err := ParseRate(raw.Rate)
	if err != nil {
		return Record{}, fmt.Errorf("row %d: %w", raw.Index, err)
	}
	return Record{
		Index:       raw.Index,
		Date:        date,
		Rate:        rate,
		Year:        date.Year(),
		Month:       int(date.Month()),
		Day:         date.Day(),
		RatePercent: RatePercent(rate),
	}, nil
}

// DateLabel renders the date without a time part when it falls on midnight.
func (r Record) DateLabel() string {
	if hasClock(r.Date) {
		return r.Date.Format("2006-01-02 15:04:05")
	}
	return r.Date.Format("2006-01-02")
}

func hasClock(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}
