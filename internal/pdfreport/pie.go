package pdfreport

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/samber/lo"
)

const (
	pieRadius     = 55.0
	pieCenterY    = 110.0
	pieStartAngle = 140.0
	pieArcStep    = 2.0
)

type pieSlice struct {
	Label string
	Value float64
}

// piePage draws slices counter-clockwise from pieStartAngle with percentage
// labels inside and names outside.
func (r *renderer) piePage(title string, slices []pieSlice) {
	pdf := r.pdf
	r.addPage("P")
	r.title(title)

	total, sweeps := pieSweeps(slices)
	if total <= 0 {
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	cx, cy := pageWidth/2, pieCenterY

	pdf.SetLineWidth(0.6)
	pdf.SetDrawColor(255, 255, 255)
	start := pieStartAngle
	for i, s := range slices {
		sweep := sweeps[i]
		if sweep <= 0 {
			continue
		}
		c := sliceColor(i)
		pdf.SetFillColor(c.r, c.g, c.b)
		if sweep >= 359.99 {
			pdf.Circle(cx, cy, pieRadius, "F")
		} else {
			pdf.Polygon(wedge(cx, cy, pieRadius, start, sweep), "FD")
		}

		mid := start + sweep/2
		pdf.SetFont(r.font, "B", bodySize)
		if c.dark() {
			pdf.SetTextColor(255, 255, 255)
		} else {
			pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
		}
		px, py := polar(cx, cy, pieRadius*0.65, mid)
		r.centeredText(px, py, fmt.Sprintf("%.1f%%", s.Value/total*100))

		pdf.SetFont(r.font, "", bodySize+1)
		pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
		lx, ly := polar(cx, cy, pieRadius*1.12, mid)
		label := r.tr(s.Label)
		w := pdf.GetStringWidth(label)
		if math.Cos(mid*math.Pi/180) < 0 {
			lx -= w
		}
		_, fontHeight := pdf.GetFontSize()
		pdf.Text(lx, ly+fontHeight*0.35, label)

		start += sweep
	}
	pdf.SetLineWidth(0.2)
}

// pieSweeps returns the positive total of slices and the sweep of each slice
// in degrees. Non-positive slices get a zero sweep.
func pieSweeps(slices []pieSlice) (float64, []float64) {
	total := positiveSum(slices, func(s pieSlice) float64 { return s.Value })
	sweeps := make([]float64, len(slices))
	if total <= 0 {
		return total, sweeps
	}
	for i, s := range slices {
		if s.Value > 0 {
			sweeps[i] = s.Value / total * 360
		}
	}
	return total, sweeps
}

// positiveSum adds the positive values of items. Slices with a negative or
// zero value are not drawn, so they take no share of the pie.
func positiveSum[T any](items []T, value func(T) float64) float64 {
	return lo.SumBy(items, func(item T) float64 {
		return max(value(item), 0)
	})
}

// polar converts an angle in degrees, counter-clockwise from east, to page
// coordinates where y grows downwards.
func polar(cx, cy, radius, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + radius*math.Cos(rad), cy - radius*math.Sin(rad)
}

func wedge(cx, cy, radius, start, sweep float64) []fpdf.PointType {
	steps := int(math.Ceil(sweep / pieArcStep))
	points := make([]fpdf.PointType, 0, steps+2)
	points = append(points, fpdf.PointType{X: cx, Y: cy})
	for i := 0; i <= steps; i++ {
		deg := start + sweep*float64(i)/float64(steps)
		x, y := polar(cx, cy, radius, deg)
		points = append(points, fpdf.PointType{X: x, Y: y})
	}
	return points
}
