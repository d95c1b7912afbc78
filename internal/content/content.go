// Package content aggregates the Popular Content sheet across exports.
package content

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/source"
)

const (
	// SheetName is matched case-insensitively.
	SheetName = "Popular Content"
	// HeaderRows precede the first data row.
	HeaderRows = 6
	minCells   = 4
)

// Outcome is the result of feeding one row to the aggregator.
type Outcome int

const (
	Accepted Outcome = iota
	SkipTooFewCells
	SkipNonInteger
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case SkipTooFewCells:
		return "too few cells"
	case SkipNonInteger:
		return "non-integer metric"
	default:
		return "unknown"
	}
}

// Aggregator sums viewer counts per content key. Create one per run.
type Aggregator struct {
	totals map[model.ContentKey]*model.ContentRecord
	order  []model.ContentKey
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{totals: map[model.ContentKey]*model.ContentRecord{}}
}

// Add accumulates a record into the totals for its key.
func (a *Aggregator) Add(rec model.ContentRecord) {
	cur, ok := a.totals[rec.Key]
	if !ok {
		cur = &model.ContentRecord{Key: rec.Key}
		a.totals[rec.Key] = cur
		a.order = append(a.order, rec.Key)
	}
	cur.UniqueViewers += rec.UniqueViewers
	cur.Viewers += rec.Viewers
}

// AddRow parses a sheet row and adds it when valid. Empty cells are dropped
// before the first four remaining cells are read as content, type, unique
// viewers and viewers.
func (a *Aggregator) AddRow(row source.Row) Outcome {
	rec, outcome := ParseRow(row)
	if outcome != Accepted {
		return outcome
	}
	a.Add(rec)
	return Accepted
}

// ParseRow converts a sheet row into a record.
func ParseRow(row source.Row) (model.ContentRecord, Outcome) {
	cells := lo.Compact([]string(row))
	if len(cells) < minCells {
		return model.ContentRecord{}, SkipTooFewCells
	}
	unique, err := source.ParseInt(cells[2])
	if err != nil {
		return model.ContentRecord{}, SkipNonInteger
	}
	viewers, err := source.ParseInt(cells[3])
	if err != nil {
		return model.ContentRecord{}, SkipNonInteger
	}
	return model.ContentRecord{
		Key:           model.ContentKey{Content: cells[0], Type: cells[1]},
		UniqueViewers: unique,
		Viewers:       viewers,
	}, Accepted
}

// Finalize returns the summary in first-seen key order.
func (a *Aggregator) Finalize() model.ContentSummary {
	records := lo.Map(a.order, func(key model.ContentKey, _ int) model.ContentRecord {
		return *a.totals[key]
	})
	var types []string
	byType := map[string]int64{}
	for _, rec := range records {
		if _, ok := byType[rec.Key.Type]; !ok {
			types = append(types, rec.Key.Type)
		}
		byType[rec.Key.Type] += rec.Viewers
	}
	return model.ContentSummary{
		Records: records,
		TypeTotals: lo.Map(types, func(typ string, _ int) model.TypeTotal {
			return model.TypeTotal{Type: typ, Viewers: byType[typ]}
		}),
	}
}

// Len returns the number of distinct keys.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Tally counts row outcomes for one sheet. LastRow is the sheet row number of
// the last data row read.
type Tally struct {
	Sheet   string
	Found   bool
	Counts  map[Outcome]int
	LastRow int
}

// Accepted returns the number of accepted rows.
func (t Tally) Accepted() int {
	return t.Counts[Accepted]
}

// Skipped returns the number of skipped rows.
func (t Tally) Skipped() int {
	return t.Counts[SkipTooFewCells] + t.Counts[SkipNonInteger]
}

// ReadWorkbook feeds the Popular Content sheet of wb into agg. A workbook
// without the sheet is not an error.
func ReadWorkbook(wb *source.Workbook, agg *Aggregator) (Tally, error) {
	tally := Tally{Counts: map[Outcome]int{}}
	sheet, ok := wb.FindSheet(SheetName, true)
	if !ok {
		return tally, nil
	}
	tally.Sheet = sheet
	tally.Found = true

	// Rows keep their natural width so cells in any column take part in
	// compaction and in the end-of-table check.
	it, err := wb.Rows(sheet, 0)
	if err != nil {
		return tally, err
	}
	defer func() {
		_ = it.Close()
	}()

	if !it.Skip(HeaderRows) {
		return tally, it.Err()
	}
	for it.Next() {
		row := it.Row()
		if row.Empty() {
			break
		}
		tally.Counts[agg.AddRow(row)]++
		tally.LastRow = it.Index()
	}
	if err := it.Err(); err != nil {
		return tally, fmt.Errorf("failed to read %s from %s: %w", sheet, wb.Name(), err)
	}
	return tally, nil
}
