package stats

import (
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	minBarWidth         = 10
	barSeparator        = " | "
	barChar             = "#"
	terminalWidthBackup = 80
)

// Bar is one labelled value in a text bar chart.
type Bar struct {
	Label string
	Value float64
}

// formatBars renders bars scaled to the largest value. Each line shows the
// value and its share of the total.
func formatBars(bars []Bar, totalWidth int) []string {
	if len(bars) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	labelWidth := 0
	maxVal := 0.0
	sum := 0.0
	suffixes := make([]string, len(bars))
	suffixWidth := 0
	for _, b := range bars {
		if w := displayWidth(b.Label); w > labelWidth {
			labelWidth = w
		}
		if b.Value > maxVal {
			maxVal = b.Value
		}
		sum += b.Value
	}
	for i, b := range bars {
		share := 0.0
		if sum > 0 {
			share = b.Value / sum * 100
		}
		suffixes[i] = fmt.Sprintf("%s (%.1f%%)", formatCount(b.Value), share)
		if w := len(suffixes[i]); w > suffixWidth {
			suffixWidth = w
		}
	}
	barWidth := totalWidth - labelWidth - len(barSeparator) - suffixWidth - 1
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	lines := make([]string, 0, len(bars))
	for i, b := range bars {
		n := 0
		if maxVal > 0 && b.Value > 0 {
			n = int(math.Round(b.Value / maxVal * float64(barWidth)))
			if n == 0 {
				n = 1
			}
		}
		bar := strings.Repeat(barChar, n) + strings.Repeat(" ", barWidth-n)
		lines = append(lines, padCell(b.Label, labelWidth, false)+barSeparator+bar+" "+suffixes[i])
	}
	return lines
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
