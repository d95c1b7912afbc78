// Package testutil builds spreadsheet fixtures for tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named sheet written from cell A1. A nil row leaves a blank row.
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteWorkbook saves the sheets as an xlsx file in dir and returns its path.
func WriteWorkbook(t *testing.T, dir, name string, sheets ...Sheet) string {
	t.Helper()
	return writeWorkbook(t, dir, name, false, sheets)
}

// WriteWorkbook1904 is WriteWorkbook for a workbook using the 1904 date
// system. Dates should be written as serial numbers.
func WriteWorkbook1904(t *testing.T, dir, name string, sheets ...Sheet) string {
	t.Helper()
	return writeWorkbook(t, dir, name, true, sheets)
}

func writeWorkbook(t *testing.T, dir, name string, date1904 bool, sheets []Sheet) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if date1904 {
		if err := f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}); err != nil {
			t.Fatalf("set workbook props: %v", err)
		}
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %s: %v", sheet.Name, err)
		}
		for r, row := range sheet.Rows {
			if row == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("set row %d: %v", r+1, err)
			}
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// PopularContent returns a Popular Content sheet with six header rows
// followed by the given data rows.
func PopularContent(rows ...[]any) Sheet {
	all := [][]any{
		{"Popular Content"},
		{"Site analytics export"},
		nil,
		{"Period", "Last 30 days"},
		nil,
		{"Content", "Type", "Unique Viewers", "Viewers"},
	}
	all = append(all, rows...)
	return Sheet{Name: "Popular Content", Rows: all}
}

// DeviceUsage returns a Usage by device sheet with a header row. Each day
// gets the given per-column values: desktop, mobile web, mobile app, tablet, other.
func DeviceUsage(days []time.Time, values func(i int) []float64) Sheet {
	rows := [][]any{{"Date", "Desktop", "Mobile Web", "Mobile App", "Tablet", "Other Devices"}}
	for i, day := range days {
		row := []any{day}
		for _, v := range values(i) {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return Sheet{Name: "Usage by device", Rows: rows}
}

// TimeUsage returns a Usage by time sheet with a header row.
func TimeUsage(rows ...[]any) Sheet {
	all := [][]any{{"Hour", "1-day", "7-day", "30-day"}}
	all = append(all, rows...)
	return Sheet{Name: "Usage by time", Rows: all}
}

// Days returns n consecutive days starting at start.
func Days(start time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}
