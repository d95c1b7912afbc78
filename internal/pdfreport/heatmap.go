package pdfreport

import (
	"math"

	"github.com/verte-zerg/sitereport/internal/model"
)

const (
	heatLabelWidth  = 26.0
	heatLegendWidth = 24.0
	heatHeaderRow   = 8.0
	heatMaxCellW    = 45.0
	heatMaxCellH    = 18.0
	legendSteps     = 24
)

// heatmapPage draws a weekday by week grid on a landscape page. Cells are
// coloured by their position between the smallest and largest value on the
// page; missing cells stay blank.
func (r *renderer) heatmapPage(title string, pivot model.WeekdayPivot, weeks []string, sc scale) {
	pdf := r.pdf
	r.addPage("L")
	r.title(title)
	if len(weeks) == 0 {
		return
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	top := pdf.GetY()
	gridX := margin + heatLabelWidth
	gridY := top + heatHeaderRow
	cellW := math.Min((pageWidth-2*margin-heatLabelWidth-heatLegendWidth)/float64(len(weeks)), heatMaxCellW)
	cellH := math.Min((pageHeight-gridY-footerMargin-4)/float64(len(model.Weekdays)), heatMaxCellH)

	low, high, ok := valueRange(pivot, weeks)
	if !ok {
		return
	}

	pdf.SetFont(r.font, "B", bodySize)
	for col, week := range weeks {
		r.centeredText(gridX+cellW*(float64(col)+0.5), top+heatHeaderRow/2, week)
	}

	pdf.SetLineWidth(0.5)
	for row, day := range model.Weekdays {
		y := gridY + cellH*float64(row)
		pdf.SetFont(r.font, "B", bodySize)
		pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
		_, fontHeight := pdf.GetFontSize()
		pdf.Text(margin, y+cellH/2+fontHeight*0.35, day.String())

		pdf.SetFont(r.font, "", bodySize)
		for col, week := range weeks {
			x := gridX + cellW*float64(col)
			v, ok := pivot.Value(day, week)
			if !ok {
				continue
			}
			c := sc.at(normalize(v, low, high))
			pdf.SetFillColor(c.r, c.g, c.b)
			pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
			pdf.Rect(x, y, cellW, cellH, "FD")
			if c.dark() {
				pdf.SetTextColor(255, 255, 255)
			} else {
				pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
			}
			r.centeredText(x+cellW/2, y+cellH/2, formatValue(v))
		}
	}
	pdf.SetLineWidth(0.2)
	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)

	legendX := gridX + cellW*float64(len(weeks)) + 6
	r.legend(legendX, gridY, cellH*float64(len(model.Weekdays)), low, high, sc)
}

// legend draws a vertical colour bar with the high value at the top.
func (r *renderer) legend(x, y, height, low, high float64, sc scale) {
	pdf := r.pdf
	const barWidth = 5.0
	step := height / legendSteps
	for i := 0; i < legendSteps; i++ {
		t := 1 - (float64(i)+0.5)/legendSteps
		c := sc.at(t)
		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.Rect(x, y+step*float64(i), barWidth, step+0.1, "F")
	}
	pdf.SetFont(r.font, "", bodySize-1)
	_, fontHeight := pdf.GetFontSize()
	pdf.Text(x+barWidth+1.5, y+fontHeight*0.7, formatValue(high))
	pdf.Text(x+barWidth+1.5, y+height, formatValue(low))
}

func valueRange(pivot model.WeekdayPivot, weeks []string) (float64, float64, bool) {
	low, high := math.Inf(1), math.Inf(-1)
	found := false
	for _, day := range model.Weekdays {
		for _, week := range weeks {
			v, ok := pivot.Value(day, week)
			if !ok {
				continue
			}
			found = true
			low = math.Min(low, v)
			high = math.Max(high, v)
		}
	}
	return low, high, found
}

func normalize(v, low, high float64) float64 {
	if high-low < 1e-9 {
		return 0.5
	}
	return (v - low) / (high - low)
}
