// Package usage extracts device and time-of-day usage from the latest export.
package usage

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/source"
)

const (
	// DeviceSheet holds one row per day.
	DeviceSheet = "Usage by device"
	// DefaultWindow is the number of trailing rows kept.
	DefaultWindow    = 30
	deviceHeaderRows = 1
)

// deviceColumns maps sheet columns to device categories. Mobile Display is the
// sum of the mobile web and mobile app columns.
var deviceColumns = map[model.Device][]int{
	model.Desktop:       {1},
	model.MobileDisplay: {2, 3},
	model.Tablet:        {4},
	model.OtherDevices:  {5},
}

// DeviceResult is the parsed Usage by device sheet.
type DeviceResult struct {
	Found   bool
	Rows    []model.UsageRow
	Read    int
	Skipped int
}

// ReadDeviceUsage reads the trailing window rows of the Usage by device sheet.
// The window is taken over the full row sequence before any row is parsed, so
// rows older than the window never count even when valid.
func ReadDeviceUsage(wb *source.Workbook, window int) (DeviceResult, error) {
	var res DeviceResult
	sheet, ok := wb.FindSheet(DeviceSheet, false)
	if !ok {
		return res, nil
	}
	res.Found = true

	it, err := wb.Rows(sheet, 0)
	if err != nil {
		return res, err
	}
	defer func() {
		_ = it.Close()
	}()
	if !it.Skip(deviceHeaderRows) {
		return res, it.Err()
	}
	var raw []source.Row
	for it.Next() {
		raw = append(raw, it.Row())
	}
	if err := it.Err(); err != nil {
		return res, fmt.Errorf("failed to read %s from %s: %w", sheet, wb.Name(), err)
	}

	res.Rows, res.Skipped = ParseDeviceRows(LastRows(raw, window), wb.Date1904())
	res.Read = len(res.Rows) + res.Skipped
	return res, nil
}

// LastRows returns the trailing n rows. A non-positive n keeps all rows.
func LastRows[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

// ParseDeviceRows converts raw rows into usage rows sorted by date. Rows
// without a parseable date in the first cell are skipped. Serial dates count
// from 1904 when date1904 is set.
func ParseDeviceRows(rows []source.Row, date1904 bool) ([]model.UsageRow, int) {
	out := make([]model.UsageRow, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row.Cell(0) == "" {
			skipped++
			continue
		}
		date, err := source.ParseDateSystem(row.Cell(0), date1904)
		if err != nil {
			skipped++
			continue
		}
		total := 0.0
		for _, cell := range row[1:] {
			total += source.NumberOrZero(cell)
		}
		devices := make(map[model.Device]float64, len(deviceColumns))
		for device, cols := range deviceColumns {
			devices[device] = lo.SumBy(cols, func(col int) float64 {
				return source.NumberOrZero(row.Cell(col))
			})
		}
		out = append(out, model.UsageRow{Date: date, Total: total, Devices: devices})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, skipped
}
