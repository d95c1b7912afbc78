package usage

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
)

// DefaultChunkWeeks is the number of week columns per heatmap page.
const DefaultChunkWeeks = 5

// WeekID returns the ISO week identifier of a date, e.g. 2024-W05.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// BuildPivot sums value(row) by weekday and ISO week.
func BuildPivot(rows []model.UsageRow, value func(model.UsageRow) float64) model.WeekdayPivot {
	cells := map[time.Weekday]map[string]float64{}
	weeks := map[string]struct{}{}
	for _, row := range rows {
		week := WeekID(row.Date)
		day := row.Date.Weekday()
		if cells[day] == nil {
			cells[day] = map[string]float64{}
		}
		cells[day][week] += value(row)
		weeks[week] = struct{}{}
	}
	keys := lo.Keys(weeks)
	sort.Strings(keys)
	return model.WeekdayPivot{Weeks: keys, Cells: cells}
}

// TotalPivot pivots total visits.
func TotalPivot(rows []model.UsageRow) model.WeekdayPivot {
	return BuildPivot(rows, func(r model.UsageRow) float64 { return r.Total })
}

// DevicePivots pivots each device category independently.
func DevicePivots(rows []model.UsageRow) map[model.Device]model.WeekdayPivot {
	out := make(map[model.Device]model.WeekdayPivot, len(model.Devices))
	for _, device := range model.Devices {
		device := device
		out[device] = BuildPivot(rows, func(r model.UsageRow) float64 { return r.Devices[device] })
	}
	return out
}

// ChunkWeeks splits week columns into groups of at most size.
func ChunkWeeks(weeks []string, size int) [][]string {
	if len(weeks) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]string{weeks}
	}
	return lo.Chunk(weeks, size)
}
