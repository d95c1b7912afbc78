package stats

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/sitereport/internal/model"
	"github.com/verte-zerg/sitereport/internal/source"
	"github.com/verte-zerg/sitereport/internal/testutil"
)

func writeExports(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteWorkbook(t, dir, "SiteAnalyticsData_05-Jan,2024.xlsx",
		testutil.PopularContent(
			[]any{"Home", "Page", 10, 100},
			[]any{"Launch", "Video", 3, 9},
		),
	)
	start := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	testutil.WriteWorkbook(t, dir, "SiteAnalyticsData_20-Feb,2024.xlsx",
		testutil.PopularContent(
			[]any{"Home", "Page", 5, 50},
		),
		testutil.DeviceUsage(testutil.Days(start, 10), func(i int) []float64 {
			return []float64{float64(i + 1), 0, 0, 0, 0}
		}),
		testutil.TimeUsage(
			[]any{"Hour 13:00", 1, 2, 40},
			[]any{"Hour 22:00", 1, 2, 2},
		),
	)
	return dir
}

func TestBuildReport(t *testing.T) {
	dir := writeExports(t)
	opts := model.Options{InputDir: dir}
	report, err := BuildReport(context.Background(), opts, zap.NewNop())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Files) != 2 {
		t.Fatalf("expected 2 files, got %v", report.Files)
	}
	records := report.Content.Records
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	if records[0].Key.Content != "Home" || records[0].UniqueViewers != 15 || records[0].Viewers != 150 {
		t.Fatalf("unexpected home record: %+v", records[0])
	}
	if report.LatestFile != "SiteAnalyticsData_20-Feb,2024.xlsx" {
		t.Fatalf("unexpected latest file: %s", report.LatestFile)
	}
	if len(report.Usage) != 10 {
		t.Fatalf("expected 10 usage rows, got %d", len(report.Usage))
	}
	if len(report.TotalPivot.Weeks) != 2 || report.TotalPivot.Weeks[0] != "2024-W06" {
		t.Fatalf("unexpected pivot weeks: %v", report.TotalPivot.Weeks)
	}
	if v, ok := report.TotalPivot.Value(time.Monday, "2024-W07"); !ok || v != 8 {
		t.Fatalf("expected 8 on Monday of W07, got %v %v", v, ok)
	}
	if !report.HasTimeSheet || len(report.Timeframes) != 2 {
		t.Fatalf("unexpected timeframes: %+v", report.Timeframes)
	}
	if report.Timeframes[0] != (model.TimeframeTotal{Name: "Afternoon", Visits: 40}) {
		t.Fatalf("unexpected afternoon bucket: %+v", report.Timeframes[0])
	}
}

func TestBuildReportEmptyDirectory(t *testing.T) {
	report, err := BuildReport(context.Background(), model.Options{InputDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Content.Records) != 0 || report.LatestFile != "" || len(report.Usage) != 0 {
		t.Fatalf("expected an empty report, got %+v", report)
	}
}

func TestBuildReportMissingDirectory(t *testing.T) {
	opts := model.Options{InputDir: filepath.Join(t.TempDir(), "missing")}
	if _, err := BuildReport(context.Background(), opts, zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing input directory")
	}
}

func TestBuildReportUnreadableFile(t *testing.T) {
	dir := writeExports(t)
	if err := os.WriteFile(filepath.Join(dir, "broken.xlsx"), []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	report, err := BuildReport(context.Background(), model.Options{InputDir: dir}, zap.NewNop())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.SkippedFiles) != 1 || report.SkippedFiles[0] != "broken.xlsx" {
		t.Fatalf("expected broken.xlsx to be skipped, got %v", report.SkippedFiles)
	}

	_, err = BuildReport(context.Background(), model.Options{InputDir: dir, Strict: true}, zap.NewNop())
	if !errors.Is(err, source.ErrUnreadable) {
		t.Fatalf("expected unreadable error in strict mode, got %v", err)
	}
}

func TestRenderSummary(t *testing.T) {
	report, err := BuildReport(context.Background(), model.Options{InputDir: writeExports(t)}, zap.NewNop())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, report, 80); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Files: 2",
		"Latest export: SiteAnalyticsData_20-Feb,2024.xlsx (2024-02-20)",
		"Popular Content",
		"Visits by Weekday: Desktop",
		"Afternoon",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected summary to contain %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryWithoutLatestFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, model.Report{}, 80); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Latest export: none") || !strings.Contains(out, "No content rows found.") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if strings.Contains(out, "Visits by Date") {
		t.Fatalf("expected usage sections to be omitted:\n%s", out)
	}
}

func TestPivotTableLeavesMissingCellsBlank(t *testing.T) {
	pivot := model.WeekdayPivot{
		Weeks: []string{"2024-W02"},
		Cells: map[time.Weekday]map[string]float64{time.Wednesday: {"2024-W02": 42}},
	}
	headers, rows := PivotTable(pivot, pivot.Weeks)
	if len(headers) != 2 || len(rows) != 7 {
		t.Fatalf("unexpected table shape: %v %d", headers, len(rows))
	}
	if rows[2][0] != "Wednesday" || rows[2][1] != "42" {
		t.Fatalf("unexpected wednesday row: %v", rows[2])
	}
	if rows[0][1] != "" {
		t.Fatalf("expected blank monday cell, got %q", rows[0][1])
	}
}

func TestWriteYAML(t *testing.T) {
	report, err := BuildReport(context.Background(), model.Options{InputDir: writeExports(t)}, zap.NewNop())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteYAML(&buf, report); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	var doc SummaryDoc
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(doc.Content) != 2 || doc.Content[0].Viewers != 150 {
		t.Fatalf("unexpected content: %+v", doc.Content)
	}
	if doc.LatestDate != "2024-02-20" || len(doc.Visits) != 10 || doc.Visits[0].Week != "2024-W06" {
		t.Fatalf("unexpected usage export: %+v", doc)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 5, 10}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestBuildReportLogsReadCounts(t *testing.T) {
	dir := writeExports(t)
	core, logs := observer.New(zapcore.DebugLevel)
	if _, err := BuildReport(context.Background(), model.Options{InputDir: dir}, zap.New(core)); err != nil {
		t.Fatalf("build report: %v", err)
	}

	content := logs.FilterMessage("read popular content").AllUntimed()
	if len(content) != 2 {
		t.Fatalf("expected 2 content log entries, got %d", len(content))
	}
	if got := content[0].ContextMap()["last_row"]; got != int64(8) {
		t.Fatalf("expected last_row 8, got %v", got)
	}
	usage := logs.FilterMessage("read device usage").AllUntimed()
	if len(usage) != 1 {
		t.Fatalf("expected 1 device usage log entry, got %d", len(usage))
	}
	if got := usage[0].ContextMap()["read"]; got != int64(10) {
		t.Fatalf("expected read 10, got %v", got)
	}
}
