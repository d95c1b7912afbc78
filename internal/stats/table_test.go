package stats

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Content", "Type", "Viewers"}
	rows := [][]string{
		{"Intro", "Video", "1200"},
		{"Café menu", "Page", "7"},
	}
	rightAlign := map[int]bool{2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Content    Type   Viewers" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "---------  -----  -------" {
		t.Fatalf("unexpected rule line: %q", lines[1])
	}
	if lines[2] != "Intro      Video     1200" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
	if lines[3] != "Café menu  Page         7" {
		t.Fatalf("unexpected row line: %q", lines[3])
	}
}

func TestFormatTableTrimsTrailingBlankCells(t *testing.T) {
	lines := formatTable([]string{"Weekday", "2024-W01"}, [][]string{{"Monday", ""}}, map[int]bool{1: true})
	if lines[2] != "Monday" {
		t.Fatalf("expected trailing blank cell to be trimmed, got %q", lines[2])
	}
}

func TestFormatBarsScalesToLargest(t *testing.T) {
	lines := formatBars([]Bar{{Label: "A", Value: 30}, {Label: "Bb", Value: 10}}, 40)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	want := "A  | " + strings.Repeat("#", 24) + " 30 (75.0%)"
	if lines[0] != want {
		t.Fatalf("unexpected first bar:\n got %q\nwant %q", lines[0], want)
	}
	want = "Bb | " + strings.Repeat("#", 8) + strings.Repeat(" ", 16) + " 10 (25.0%)"
	if lines[1] != want {
		t.Fatalf("unexpected second bar:\n got %q\nwant %q", lines[1], want)
	}
}

func TestFormatBarsEmpty(t *testing.T) {
	if lines := formatBars(nil, 40); lines != nil {
		t.Fatalf("expected no lines, got %v", lines)
	}
}
