package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
)

// Section is a titled block of summary text.
type Section struct {
	Title string
	Lines []string
}

// ContentHeaders are the column titles of the content table.
var ContentHeaders = []string{"Content", "Type", "Unique Viewers", "Viewers"}

// ContentRows formats content records as table cells.
func ContentRows(records []model.ContentRecord) [][]string {
	return lo.Map(records, func(rec model.ContentRecord, _ int) []string {
		return []string{
			rec.Key.Content,
			rec.Key.Type,
			fmt.Sprintf("%d", rec.UniqueViewers),
			fmt.Sprintf("%d", rec.Viewers),
		}
	})
}

// PivotTable formats a weekday pivot. Missing cells are left blank.
func PivotTable(pivot model.WeekdayPivot, weeks []string) ([]string, [][]string) {
	headers := append([]string{"Weekday"}, weeks...)
	rows := make([][]string, 0, len(model.Weekdays))
	for _, day := range model.Weekdays {
		row := make([]string, 0, len(weeks)+1)
		row = append(row, day.String())
		for _, week := range weeks {
			v, ok := pivot.Value(day, week)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatCount(v))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// ContentSection lists every aggregated record.
func ContentSection(report model.Report) Section {
	sec := Section{Title: "Popular Content"}
	if len(report.Content.Records) == 0 {
		sec.Lines = []string{"No content rows found."}
		return sec
	}
	sec.Lines = formatTable(ContentHeaders, ContentRows(report.Content.Records), map[int]bool{2: true, 3: true})
	return sec
}

// TypesSection shows the viewer share per content type.
func TypesSection(report model.Report, width int) Section {
	sec := Section{Title: "Viewers by Type"}
	if len(report.Content.TypeTotals) == 0 {
		sec.Lines = []string{"No content types found."}
		return sec
	}
	bars := lo.Map(report.Content.TypeTotals, func(tt model.TypeTotal, _ int) Bar {
		return Bar{Label: tt.Type, Value: float64(tt.Viewers)}
	})
	sec.Lines = formatBars(bars, width)
	return sec
}

// VisitsSection lists total visits per day of the usage window.
func VisitsSection(report model.Report) Section {
	sec := Section{Title: "Visits by Date"}
	if len(report.Usage) == 0 {
		sec.Lines = []string{"No device usage found."}
		return sec
	}
	headers := []string{"Date", "Weekday", "Total"}
	for _, dev := range model.Devices {
		headers = append(headers, dev.String())
	}
	rows := lo.Map(report.Usage, func(u model.UsageRow, _ int) []string {
		row := []string{u.Date.Format("2006-01-02"), u.Date.Weekday().String(), formatCount(u.Total)}
		for _, dev := range model.Devices {
			row = append(row, formatCount(u.Devices[dev]))
		}
		return row
	})
	right := map[int]bool{}
	for i := 2; i < len(headers); i++ {
		right[i] = true
	}
	sec.Lines = formatTable(headers, rows, right)
	totals := lo.Map(report.Usage, func(u model.UsageRow, _ int) float64 { return u.Total })
	sec.Lines = append(sec.Lines, "", "Trend: "+Sparkline(totals))
	return sec
}

// PivotSection renders one weekday pivot over all of its weeks.
func PivotSection(title string, pivot model.WeekdayPivot) Section {
	sec := Section{Title: title}
	if pivot.Empty() {
		sec.Lines = []string{"No data."}
		return sec
	}
	headers, rows := PivotTable(pivot, pivot.Weeks)
	right := map[int]bool{}
	for i := 1; i < len(headers); i++ {
		right[i] = true
	}
	sec.Lines = formatTable(headers, rows, right)
	return sec
}

// DeviceSections returns one pivot section per device category.
func DeviceSections(report model.Report) []Section {
	if len(report.DevicePivots) == 0 {
		return nil
	}
	out := make([]Section, 0, len(model.Devices))
	for _, dev := range model.Devices {
		pivot, ok := report.DevicePivots[dev]
		if !ok || pivot.Empty() {
			continue
		}
		out = append(out, PivotSection("Visits by Weekday: "+dev.String(), pivot))
	}
	return out
}

// TimeframeSection shows 30-day visits per time-of-day bucket.
func TimeframeSection(report model.Report, width int) Section {
	sec := Section{Title: "Visits by Timeframe (30 days)"}
	switch {
	case !report.HasTimeSheet:
		sec.Lines = []string{"No time usage sheet found."}
	case len(report.Timeframes) == 0:
		sec.Lines = []string{"No visits recorded."}
	default:
		bars := lo.Map(report.Timeframes, func(tf model.TimeframeTotal, _ int) Bar {
			return Bar{Label: tf.Name, Value: tf.Visits}
		})
		sec.Lines = formatBars(bars, width)
	}
	return sec
}

// Sections returns all summary sections in display order.
func Sections(report model.Report, width int) []Section {
	sections := []Section{
		ContentSection(report),
		TypesSection(report, width),
	}
	if report.LatestFile == "" {
		return sections
	}
	sections = append(sections,
		VisitsSection(report),
		PivotSection("Visits by Weekday", report.TotalPivot),
	)
	sections = append(sections, DeviceSections(report)...)
	return append(sections, TimeframeSection(report, width))
}

// RenderSummary prints the report as plain text tables.
func RenderSummary(w io.Writer, report model.Report, width int) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Files: %d", len(report.Files)); err != nil {
		return err
	}
	if len(report.SkippedFiles) > 0 {
		if _, err := fmt.Fprintf(w, " (skipped: %s)", strings.Join(report.SkippedFiles, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	latestLine := "Latest export: none"
	if report.LatestFile != "" {
		latestLine = fmt.Sprintf("Latest export: %s (%s)", report.LatestFile, report.LatestDate.Format("2006-01-02"))
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", latestLine); err != nil {
		return err
	}
	for _, sec := range Sections(report, width) {
		if _, err := fmt.Fprintln(w, sec.Title); err != nil {
			return err
		}
		for _, line := range sec.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

const sparkChars = " .:-=+*#%@"

// Sparkline renders values as a single line of density characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := lo.Min(values), lo.Max(values)
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
