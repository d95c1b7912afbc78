package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Row is a fixed-width tuple of raw cell values.
type Row []string

// Empty reports whether every cell is empty.
func (r Row) Empty() bool {
	for _, cell := range r {
		if cell != "" {
			return false
		}
	}
	return true
}

// Cell returns the value at index i, or "" when out of range.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/06",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseNumber parses a numeric cell.
func ParseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NumberOrZero parses a numeric cell and treats anything else as zero.
func NumberOrZero(cell string) float64 {
	v, ok := ParseNumber(cell)
	if !ok {
		return 0
	}
	return v
}

// ParseInt parses an integer cell. Integral decimals such as "12.0" are
// accepted because numeric cells are stored as floats.
func ParseInt(cell string) (int64, error) {
	cell = strings.TrimSpace(cell)
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return v, nil
	}
	f, ok := ParseNumber(cell)
	if !ok {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("not an integer: %q", cell)
	}
	return int64(f), nil
}

// ParseDate parses an Excel serial date in the 1900 date system or a textual
// date. The result is the calendar day in UTC.
func ParseDate(cell string) (time.Time, error) {
	return ParseDateSystem(cell, false)
}

// ParseDateSystem is ParseDate with serial dates counted from 1904-01-01 when
// date1904 is set.
func ParseDateSystem(cell string, date1904 bool) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if serial, ok := ParseNumber(cell); ok {
		if serial < 0 || (serial < 1 && !date1904) {
			return time.Time{}, fmt.Errorf("invalid serial date %q", cell)
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid serial date %q: %w", cell, err)
		}
		return dateOnly(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", cell)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
