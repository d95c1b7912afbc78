// Package source reads analytics exports from spreadsheet files.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultExtension is the spreadsheet extension the loader looks for.
const DefaultExtension = ".xlsx"

// ErrUnreadable marks a file that could not be opened as a spreadsheet.
var ErrUnreadable = errors.New("unreadable workbook")

// Workbook is an open spreadsheet file.
type Workbook struct {
	Path     string
	file     *excelize.File
	date1904 bool
}

// ListWorkbooks returns the files in dir with the given extension, sorted by name.
func ListWorkbooks(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Office lock files share the extension.
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Open opens a workbook for reading.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrUnreadable, filepath.Base(path), err)
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w %s: %v", ErrUnreadable, filepath.Base(path), err)
	}
	wb := &Workbook{Path: path, file: f}
	if props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

// Date1904 reports whether serial dates count from 1904-01-01.
func (wb *Workbook) Date1904() bool {
	return wb.date1904
}

// Close releases the workbook.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// Name returns the workbook file name.
func (wb *Workbook) Name() string {
	return filepath.Base(wb.Path)
}

// SheetNames returns sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	return wb.file.GetSheetList()
}

// FindSheet looks up a sheet by name, optionally ignoring case.
func (wb *Workbook) FindSheet(name string, fold bool) (string, bool) {
	for _, sheet := range wb.SheetNames() {
		if sheet == name || (fold && strings.EqualFold(sheet, name)) {
			return sheet, true
		}
	}
	return "", false
}

// Rows returns a lazy iterator over the rows of a sheet. Every row has exactly
// width cells, or its natural width when width is zero; absent cells are empty
// strings.
func (wb *Workbook) Rows(sheet string, width int) (*RowIterator, error) {
	rows, err := wb.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return &RowIterator{rows: rows, width: width}, nil
}

// RowIterator walks sheet rows starting at row 1.
type RowIterator struct {
	rows  *excelize.Rows
	width int
	index int
	row   Row
	err   error
}

// Next advances to the next row.
func (it *RowIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Error()
		return false
	}
	cols, err := it.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		it.err = err
		return false
	}
	it.index++
	it.row = fixedWidth(cols, it.width)
	return true
}

// Row returns the current row.
func (it *RowIterator) Row() Row {
	return it.row
}

// Index returns the 1-based sheet row number of the current row.
func (it *RowIterator) Index() int {
	return it.index
}

// Err returns the first iteration error.
func (it *RowIterator) Err() error {
	return it.err
}

// Close releases the iterator.
func (it *RowIterator) Close() error {
	return it.rows.Close()
}

// Skip advances past n rows. It returns false when the sheet ends first.
func (it *RowIterator) Skip(n int) bool {
	for i := 0; i < n; i++ {
		if !it.Next() {
			return false
		}
	}
	return true
}

func fixedWidth(cols []string, width int) Row {
	if width <= 0 {
		width = len(cols)
	}
	row := make(Row, width)
	for i := 0; i < width && i < len(cols); i++ {
		row[i] = strings.TrimSpace(cols[i])
	}
	return row
}
