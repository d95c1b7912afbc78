package latest

import (
	"testing"
	"time"
)

func TestSelectPicksLatestDate(t *testing.T) {
	paths := []string{
		"in/SiteAnalyticsData_05-Jan,2024.xlsx",
		"in/SiteAnalyticsData_20-Feb,2024.xlsx",
		"in/SiteAnalyticsData_01-Jan,2024.xlsx",
	}
	sel, ok := Select(paths, DefaultPrefix, ".xlsx")
	if !ok {
		t.Fatalf("expected a selection")
	}
	if sel.Path != "in/SiteAnalyticsData_20-Feb,2024.xlsx" {
		t.Fatalf("unexpected selection: %s", sel.Path)
	}
	want := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	if !sel.Date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, sel.Date)
	}
}

func TestSelectSkipsBadTokens(t *testing.T) {
	paths := []string{
		"SiteAnalyticsData_31-Feb,2024.xlsx",
		"SiteAnalyticsData_latest.xlsx",
		"OtherExport_01-Mar,2024.xlsx",
		"SiteAnalyticsData_3-Mar,2023.xlsx",
	}
	sel, ok := Select(paths, DefaultPrefix, ".xlsx")
	if !ok {
		t.Fatalf("expected a selection")
	}
	if sel.Path != "SiteAnalyticsData_3-Mar,2023.xlsx" {
		t.Fatalf("unexpected selection: %s", sel.Path)
	}
	if len(sel.Rejected) != 2 {
		t.Fatalf("expected 2 rejected names, got %v", sel.Rejected)
	}
}

func TestSelectNoMatch(t *testing.T) {
	if _, ok := Select([]string{"report.xlsx", "SiteAnalyticsData_bad.xlsx"}, DefaultPrefix, ".xlsx"); ok {
		t.Fatalf("expected no selection")
	}
	if _, ok := Select(nil, DefaultPrefix, ".xlsx"); ok {
		t.Fatalf("expected no selection for empty input")
	}
}

func TestParseFileDateUsesLastUnderscore(t *testing.T) {
	date, err := ParseFileDate("SiteAnalyticsData_v2_15-Aug,2023.xlsx", DefaultPrefix, ".xlsx")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if date.Year() != 2023 || date.Month() != time.August || date.Day() != 15 {
		t.Fatalf("unexpected date: %v", date)
	}
}
