// Package pdfreport renders an analytics report as a multi-page PDF.
package pdfreport

import (
	"fmt"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/usage"
)

// PageKind identifies what a page shows.
type PageKind int

const (
	TypePie PageKind = iota
	ContentTable
	TotalHeatmap
	VisitsTable
	DeviceHeatmap
	TimeframePie
)

func (k PageKind) String() string {
	switch k {
	case TypePie:
		return "type pie"
	case ContentTable:
		return "content table"
	case TotalHeatmap:
		return "total heatmap"
	case VisitsTable:
		return "visits table"
	case DeviceHeatmap:
		return "device heatmap"
	case TimeframePie:
		return "timeframe pie"
	default:
		return "unknown"
	}
}

// Page is one logical page of the report. Tables that do not fit on one
// sheet continue on the following sheets of the same page.
type Page struct {
	Kind   PageKind
	Title  string
	Device model.Device
	Weeks  []string
}

// Plan lists the pages for a report in output order. Pages without data are
// left out.
func Plan(report model.Report, opts model.Options) []Page {
	var pages []Page
	if positiveSum(report.Content.TypeTotals, func(tt model.TypeTotal) float64 { return float64(tt.Viewers) }) > 0 {
		pages = append(pages, Page{Kind: TypePie, Title: "Viewers by Popular Type"})
	}
	if len(report.Content.Records) > 0 {
		pages = append(pages, Page{Kind: ContentTable, Title: "Aggregated Content View Summary"})
	}
	pages = append(pages, heatmapPages(TotalHeatmap, "Visits Heatmap by Weekday", report.TotalPivot, opts)...)
	if len(report.Usage) > 0 {
		pages = append(pages, Page{Kind: VisitsTable, Title: "Visits by Date"})
	}
	if !opts.Extended {
		return pages
	}
	for _, dev := range model.Devices {
		title := fmt.Sprintf("%s Visits Heatmap by Weekday", dev)
		for _, page := range heatmapPages(DeviceHeatmap, title, report.DevicePivots[dev], opts) {
			page.Device = dev
			pages = append(pages, page)
		}
	}
	if report.HasTimeSheet && positiveSum(report.Timeframes, func(tf model.TimeframeTotal) float64 { return tf.Visits }) > 0 {
		pages = append(pages, Page{Kind: TimeframePie, Title: "Visits by Timeframe (30 days)"})
	}
	return pages
}

func heatmapPages(kind PageKind, title string, pivot model.WeekdayPivot, opts model.Options) []Page {
	if pivot.Empty() {
		return nil
	}
	size := opts.ChunkWeeks
	if !opts.Extended {
		size = 0
	}
	chunks := usage.ChunkWeeks(pivot.Weeks, size)
	pages := make([]Page, 0, len(chunks))
	for i, weeks := range chunks {
		pageTitle := title
		if len(chunks) > 1 {
			pageTitle = fmt.Sprintf("%s (%d/%d)", title, i+1, len(chunks))
		}
		pages = append(pages, Page{Kind: kind, Title: pageTitle, Weeks: weeks})
	}
	return pages
}
