package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/usage"
)

// SummaryDoc is the machine-readable form of a report.
type SummaryDoc struct {
	GeneratedAt  string         `yaml:"generated_at"`
	InputDir     string         `yaml:"input_dir"`
	Files        []string       `yaml:"files"`
	SkippedFiles []string       `yaml:"skipped_files,omitempty"`
	LatestFile   string         `yaml:"latest_file,omitempty"`
	LatestDate   string         `yaml:"latest_date,omitempty"`
	Content      []ContentDoc   `yaml:"content"`
	Types        []TypeDoc      `yaml:"types"`
	Visits       []VisitDoc     `yaml:"visits,omitempty"`
	Timeframes   []TimeframeDoc `yaml:"timeframes,omitempty"`
}

type ContentDoc struct {
	Content       string `yaml:"content"`
	Type          string `yaml:"type"`
	UniqueViewers int64  `yaml:"unique_viewers"`
	Viewers       int64  `yaml:"viewers"`
}

type TypeDoc struct {
	Type    string `yaml:"type"`
	Viewers int64  `yaml:"viewers"`
}

type VisitDoc struct {
	Date    string             `yaml:"date"`
	Week    string             `yaml:"week"`
	Total   float64            `yaml:"total"`
	Devices map[string]float64 `yaml:"devices"`
}

type TimeframeDoc struct {
	Name   string  `yaml:"name"`
	Visits float64 `yaml:"visits"`
}

// NewSummaryDoc converts a report for export.
func NewSummaryDoc(report model.Report) SummaryDoc {
	doc := SummaryDoc{
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		InputDir:     report.InputDir,
		Files:        report.Files,
		SkippedFiles: report.SkippedFiles,
		LatestFile:   report.LatestFile,
	}
	if doc.Files == nil {
		doc.Files = []string{}
	}
	if !report.LatestDate.IsZero() {
		doc.LatestDate = report.LatestDate.Format("2006-01-02")
	}
	doc.Content = lo.Map(report.Content.Records, func(rec model.ContentRecord, _ int) ContentDoc {
		return ContentDoc{
			Content:       rec.Key.Content,
			Type:          rec.Key.Type,
			UniqueViewers: rec.UniqueViewers,
			Viewers:       rec.Viewers,
		}
	})
	doc.Types = lo.Map(report.Content.TypeTotals, func(tt model.TypeTotal, _ int) TypeDoc {
		return TypeDoc{Type: tt.Type, Viewers: tt.Viewers}
	})
	doc.Visits = lo.Map(report.Usage, func(u model.UsageRow, _ int) VisitDoc {
		devices := make(map[string]float64, len(u.Devices))
		for dev, v := range u.Devices {
			devices[dev.String()] = v
		}
		return VisitDoc{Date: u.Date.Format("2006-01-02"), Week: usage.WeekID(u.Date), Total: u.Total, Devices: devices}
	})
	doc.Timeframes = lo.Map(report.Timeframes, func(tf model.TimeframeTotal, _ int) TimeframeDoc {
		return TimeframeDoc{Name: tf.Name, Visits: tf.Visits}
	})
	return doc
}

// WriteYAML writes the report as a YAML document.
func WriteYAML(w io.Writer, report model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewSummaryDoc(report)); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return enc.Close()
}
