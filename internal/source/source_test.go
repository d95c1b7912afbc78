package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/sitereport/internal/source"
	"github.com/verte-zerg/sitereport/internal/testutil"
)

func TestListWorkbooksFiltersExtension(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "b.xlsx", testutil.Sheet{Name: "S", Rows: [][]any{{"x"}}})
	testutil.WriteWorkbook(t, dir, "a.XLSX", testutil.Sheet{Name: "S", Rows: [][]any{{"x"}}})
	for _, name := range []string{"notes.txt", "~$b.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	paths, err := source.ListWorkbooks(dir, source.DefaultExtension)
	if err != nil {
		t.Fatalf("list workbooks: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 workbooks, got %v", paths)
	}
	if filepath.Base(paths[0]) != "a.XLSX" || filepath.Base(paths[1]) != "b.xlsx" {
		t.Fatalf("unexpected order: %v", paths)
	}
}

func TestListWorkbooksMissingDir(t *testing.T) {
	if _, err := source.ListWorkbooks(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestOpenUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := source.Open(path)
	if !errors.Is(err, source.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

func TestRowsFixedWidthAndGaps(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "w.xlsx", testutil.Sheet{
		Name: "Data",
		Rows: [][]any{
			{"a", "b", "c", "d", "e"},
			nil,
			{"x"},
		},
	})
	wb, err := source.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		_ = wb.Close()
	}()

	sheet, ok := wb.FindSheet("data", true)
	if !ok || sheet != "Data" {
		t.Fatalf("expected case-insensitive sheet lookup, got %q %v", sheet, ok)
	}
	if _, ok := wb.FindSheet("data", false); ok {
		t.Fatalf("expected exact lookup to fail")
	}

	it, err := wb.Rows(sheet, 3)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	defer func() {
		_ = it.Close()
	}()
	var rows []source.Row
	for it.Next() {
		rows = append(rows, it.Row())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %v", len(rows), rows)
	}
	for i, row := range rows {
		if len(row) != 3 {
			t.Fatalf("row %d has width %d", i, len(row))
		}
	}
	if rows[0][2] != "c" {
		t.Fatalf("expected truncated row, got %v", rows[0])
	}
	if !rows[1].Empty() {
		t.Fatalf("expected blank gap row, got %v", rows[1])
	}
	if rows[2][0] != "x" || rows[2][1] != "" {
		t.Fatalf("expected padded row, got %v", rows[2])
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	for _, cell := range []string{"45294", "45294.75", "2024-01-03", "1/3/2024", "2024-01-03 10:15:00"} {
		got, err := source.ParseDate(cell)
		if err != nil {
			t.Fatalf("parse %q: %v", cell, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: expected %v, got %v", cell, want, got)
		}
	}
	for _, cell := range []string{"", "Total", "0"} {
		if _, err := source.ParseDate(cell); err == nil {
			t.Fatalf("expected error for %q", cell)
		}
	}
}

func TestParseInt(t *testing.T) {
	cases := map[string]int64{"10": 10, " 42 ": 42, "12.0": 12, "1.5E+3": 1500}
	for cell, want := range cases {
		got, err := source.ParseInt(cell)
		if err != nil || got != want {
			t.Fatalf("parse %q: expected %d, got %d (%v)", cell, want, got, err)
		}
	}
	for _, cell := range []string{"", "n/a", "12.5"} {
		if _, err := source.ParseInt(cell); err == nil {
			t.Fatalf("expected error for %q", cell)
		}
	}
}

func TestNumberOrZero(t *testing.T) {
	if got := source.NumberOrZero("3.5"); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	if got := source.NumberOrZero("-"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestParseDateSystem1904(t *testing.T) {
	want := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	got, err := source.ParseDateSystem("43832", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got, err := source.ParseDateSystem("2024-01-03", true); err != nil || !got.Equal(want) {
		t.Fatalf("expected text dates to ignore the date system, got %v (%v)", got, err)
	}
}

func TestOpenReadsDateSystem(t *testing.T) {
	dir := t.TempDir()
	sheet := testutil.Sheet{Name: "S", Rows: [][]any{{43832}}}
	for name, want := range map[string]bool{"1900.xlsx": false, "1904.xlsx": true} {
		var path string
		if want {
			path = testutil.WriteWorkbook1904(t, dir, name, sheet)
		} else {
			path = testutil.WriteWorkbook(t, dir, name, sheet)
		}
		wb, err := source.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		got := wb.Date1904()
		_ = wb.Close()
		if got != want {
			t.Fatalf("%s: expected Date1904 %v, got %v", name, want, got)
		}
	}
}
