package pdfreport

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/samber/lo"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/stats"
)

const (
	pageSize     = "A4"
	coreFont     = "Helvetica"
	margin       = 15.0
	footerMargin = 15.0
	titleSize    = 16.0
	bodySize     = 9.0
	rowHeight    = 7.0
	cellPadding  = 4.0
	minColWidth  = 18.0
)

type renderer struct {
	pdf     *fpdf.Fpdf
	font    string
	tr      func(string) string
	unicode bool
	report  model.Report
}

// Render writes the report as a PDF document to w.
func Render(w io.Writer, report model.Report, opts model.Options) error {
	pdf, err := build(report, opts)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// WriteFile renders the report to path, replacing any existing file.
func WriteFile(path string, report model.Report, opts model.Options) error {
	pdf, err := build(report, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := pdf.Output(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}

func build(report model.Report, opts model.Options) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", pageSize, "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, footerMargin)
	pdf.SetTitle("Site analytics report", true)
	pdf.SetCreator("sitereport", true)
	if !report.GeneratedAt.IsZero() {
		pdf.SetCreationDate(report.GeneratedAt)
	}

	r := &renderer{pdf: pdf, report: report}
	r.font, r.tr, r.unicode = fontFor(pdf, report)
	if pdf.Err() {
		return nil, fmt.Errorf("failed to load font: %w", pdf.Error())
	}
	pdf.SetFooterFunc(r.footer)

	pages := Plan(report, opts)
	if len(pages) == 0 {
		r.emptyPage()
	}
	for _, page := range pages {
		r.render(page)
		if pdf.Err() {
			return nil, fmt.Errorf("failed to render %s page: %w", page.Kind, pdf.Error())
		}
	}
	return pdf, nil
}

func (r *renderer) render(page Page) {
	switch page.Kind {
	case TypePie:
		slices := lo.Map(r.report.Content.TypeTotals, func(tt model.TypeTotal, _ int) pieSlice {
			return pieSlice{Label: tt.Type, Value: float64(tt.Viewers)}
		})
		r.piePage(page.Title, slices)
	case ContentTable:
		r.tablePage(page.Title, stats.ContentHeaders, stats.ContentRows(r.report.Content.Records), map[int]bool{2: true, 3: true})
	case TotalHeatmap:
		r.heatmapPage(page.Title, r.report.TotalPivot, page.Weeks, ylOrRd)
	case VisitsTable:
		headers, rows := visitsTable(r.report.Usage)
		right := map[int]bool{}
		for i := 2; i < len(headers); i++ {
			right[i] = true
		}
		r.tablePage(page.Title, headers, rows, right)
	case DeviceHeatmap:
		r.heatmapPage(page.Title, r.report.DevicePivots[page.Device], page.Weeks, deviceScales[page.Device])
	case TimeframePie:
		slices := lo.Map(r.report.Timeframes, func(tf model.TimeframeTotal, _ int) pieSlice {
			return pieSlice{Label: tf.Name, Value: tf.Visits}
		})
		r.piePage(page.Title, slices)
	}
}

func visitsTable(rows []model.UsageRow) ([]string, [][]string) {
	headers := []string{"Date", "Weekday", "Total Visits"}
	for _, dev := range model.Devices {
		headers = append(headers, dev.String())
	}
	cells := lo.Map(rows, func(u model.UsageRow, _ int) []string {
		row := []string{u.Date.Format("2006-01-02"), u.Date.Weekday().String(), formatValue(u.Total)}
		for _, dev := range model.Devices {
			row = append(row, formatValue(u.Devices[dev]))
		}
		return row
	})
	return headers, cells
}

func (r *renderer) addPage(orientation string) {
	r.pdf.AddPageFormat(orientation, r.pdf.GetPageSizeStr(pageSize))
	r.pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
	r.pdf.SetDrawColor(textColor.r, textColor.g, textColor.b)
}

func (r *renderer) title(text string) {
	r.pdf.SetFont(r.font, "B", titleSize)
	r.pdf.CellFormat(0, 10, r.tr(text), "", 1, "C", false, 0, "")
	r.pdf.Ln(4)
}

func (r *renderer) footer() {
	r.pdf.SetY(-footerMargin + 4)
	r.pdf.SetFont(r.font, "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	left := ""
	if !r.report.GeneratedAt.IsZero() {
		left = "Generated " + r.report.GeneratedAt.Format("2006-01-02 15:04")
	}
	r.pdf.CellFormat(0, 6, r.tr(left), "", 0, "L", false, 0, "")
	r.pdf.SetX(margin)
	r.pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", r.pdf.PageNo()), "", 0, "R", false, 0, "")
}

func (r *renderer) emptyPage() {
	r.addPage("P")
	r.title("Site Analytics Report")
	r.pdf.SetFont(r.font, "", 11)
	msg := fmt.Sprintf("No report data was found in %s.", r.report.InputDir)
	r.pdf.MultiCell(0, 6, r.tr(msg), "", "C", false)
}

// centeredText writes text centred on (x, y).
func (r *renderer) centeredText(x, y float64, text string) {
	text = r.tr(text)
	w := r.pdf.GetStringWidth(text)
	_, fontHeight := r.pdf.GetFontSize()
	r.pdf.Text(x-w/2, y+fontHeight*0.35, text)
}

// fitText shortens already translated text with an ellipsis until it fits
// in width. Core fonts use a single-byte encoding, embedded fonts UTF-8.
func (r *renderer) fitText(text string, width float64) string {
	if r.pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && r.pdf.GetStringWidth(text+"...") > width {
		n := 1
		if r.unicode {
			_, n = utf8.DecodeLastRuneInString(text)
		}
		text = text[:len(text)-n]
	}
	return text + "..."
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
