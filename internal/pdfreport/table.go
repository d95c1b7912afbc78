package pdfreport

import "github.com/samber/lo"

// tablePage draws a table, continuing on new sheets with a repeated header
// until every row is placed.
func (r *renderer) tablePage(title string, headers []string, rows [][]string, rightCols map[int]bool) {
	pdf := r.pdf
	headers = lo.Map(headers, func(h string, _ int) string { return r.tr(h) })
	rows = lo.Map(rows, func(row []string, _ int) []string {
		return lo.Map(row, func(cell string, _ int) string { return r.tr(cell) })
	})

	widths := r.columnWidths(headers, rows)
	stripe := 0
	for sheet := 0; sheet == 0 || len(rows) > 0; sheet++ {
		r.addPage("P")
		if sheet == 0 {
			r.title(title)
		} else {
			r.title(title + " (continued)")
		}
		r.tableHeader(headers, widths)

		_, pageHeight := pdf.GetPageSize()
		limit := pageHeight - footerMargin
		placed := 0
		for placed < len(rows) && (placed == 0 || pdf.GetY()+rowHeight <= limit) {
			r.tableRow(rows[placed], widths, rightCols, stripe%2 == 1)
			placed++
			stripe++
		}
		rows = rows[placed:]
	}
}

// columnWidths sizes columns to their widest cell and shrinks the widest
// column when the table is wider than the page.
func (r *renderer) columnWidths(headers []string, rows [][]string) []float64 {
	pdf := r.pdf
	widths := make([]float64, len(headers))
	pdf.SetFont(r.font, "B", bodySize)
	for i, h := range headers {
		widths[i] = pdf.GetStringWidth(h) + cellPadding
	}
	pdf.SetFont(r.font, "", bodySize)
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := pdf.GetStringWidth(cell) + cellPadding; w > widths[i] {
				widths[i] = w
			}
		}
	}

	pageWidth, _ := pdf.GetPageSize()
	available := pageWidth - 2*margin
	if excess := lo.Sum(widths) - available; excess > 0 {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		widths[widest] = max(widths[widest]-excess, minColWidth)
	}
	return widths
}

func (r *renderer) tableHeader(headers []string, widths []float64) {
	pdf := r.pdf
	pdf.SetFont(r.font, "B", bodySize)
	pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], rowHeight, r.fitText(h, widths[i]-cellPadding/2), "", 0, "C", true, 0, "")
	}
	pdf.Ln(rowHeight)
	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
}

func (r *renderer) tableRow(row []string, widths []float64, rightCols map[int]bool, shaded bool) {
	pdf := r.pdf
	pdf.SetFont(r.font, "", bodySize)
	pdf.SetFillColor(stripeFill.r, stripeFill.g, stripeFill.b)
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		align := "L"
		if rightCols[i] {
			align = "R"
		}
		pdf.CellFormat(w, rowHeight, r.fitText(cell, w-cellPadding/2), "", 0, align, shaded, 0, "")
	}
	pdf.Ln(rowHeight)
}
