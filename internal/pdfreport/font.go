package pdfreport

import (
	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/encoding/charmap"

	"github.com/verte-zerg/sitereport/internal/model"
)

// unicodeFont is the embedded family used when a label falls outside the
// cp1252 range of the core fonts. The Go fonts cover Latin, Greek and
// Cyrillic scripts.
const unicodeFont = "Go"

var unicodeFaces = []struct {
	style string
	ttf   []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
}

// fontFor picks the font family and text translator for a report. Core
// Helvetica is kept while every label can be encoded in cp1252.
func fontFor(pdf *fpdf.Fpdf, report model.Report) (string, func(string) string, bool) {
	if encodable(reportLabels(report)) {
		return coreFont, pdf.UnicodeTranslatorFromDescriptor(""), false
	}
	for _, face := range unicodeFaces {
		pdf.AddUTF8FontFromBytes(unicodeFont, face.style, face.ttf)
	}
	return unicodeFont, func(s string) string { return s }, true
}

func reportLabels(report model.Report) []string {
	labels := []string{report.InputDir, report.LatestFile}
	for _, rec := range report.Content.Records {
		labels = append(labels, rec.Key.Content, rec.Key.Type)
	}
	for _, tt := range report.Content.TypeTotals {
		labels = append(labels, tt.Type)
	}
	for _, tf := range report.Timeframes {
		labels = append(labels, tf.Name)
	}
	return labels
}

func encodable(labels []string) bool {
	enc := charmap.Windows1252.NewEncoder()
	for _, label := range labels {
		if _, err := enc.String(label); err != nil {
			return false
		}
	}
	return true
}
