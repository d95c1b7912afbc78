package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/sitereport/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		report := model.Report{
			GeneratedAt: time.Date(2024, time.March, 1+i, 8, 0, 0, 0, time.UTC),
			InputDir:    "BSREPORTS",
			Files:       []string{"a.xlsx", "b.xlsx"},
			LatestFile:  "SiteAnalyticsData_20-Feb,2024.xlsx",
			Content: model.ContentSummary{Records: []model.ContentRecord{
				{Key: model.ContentKey{Content: "Home", Type: "Page"}, UniqueViewers: 15, Viewers: 150},
			}},
			Usage: make([]model.UsageRow, 30),
		}
		id, err := st.InsertRun(ctx, report, "report_viewers_summary.pdf")
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}
	if ids[0] == ids[1] {
		t.Fatalf("expected distinct run ids")
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("expected newest runs first, got %s %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Files != 2 || runs[0].Records != 1 || runs[0].UsageRows != 30 {
		t.Fatalf("unexpected run counts: %+v", runs[0])
	}
	if !runs[0].GeneratedAt.Equal(time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected generated time: %v", runs[0].GeneratedAt)
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list all runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestRunContent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	report := model.Report{
		GeneratedAt: time.Now(),
		Content: model.ContentSummary{Records: []model.ContentRecord{
			{Key: model.ContentKey{Content: "Launch", Type: "Video"}, UniqueViewers: 3, Viewers: 9},
			{Key: model.ContentKey{Content: "Home", Type: "Page"}, UniqueViewers: 15, Viewers: 150},
		}},
	}
	id, err := st.InsertRun(ctx, report, "out.pdf")
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	records, err := st.RunContent(ctx, id)
	if err != nil {
		t.Fatalf("run content: %v", err)
	}
	if len(records) != 2 || records[0].Key.Content != "Launch" || records[1].Viewers != 150 {
		t.Fatalf("unexpected records: %+v", records)
	}

	if _, err := st.RunContent(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestResolveRunID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"abc10000", "abc20000"} {
		if _, err := st.db.ExecContext(ctx,
			`INSERT INTO runs (id, generated_at, input_dir, output_path, latest_file, files, records, usage_rows)
			 VALUES (?, ?, '', '', '', 0, 0, 0)`,
			id, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	got, err := st.ResolveRunID(ctx, "abc2")
	if err != nil || got != "abc20000" {
		t.Fatalf("expected abc20000, got %q (%v)", got, err)
	}
	if got, err := st.ResolveRunID(ctx, "abc10000"); err != nil || got != "abc10000" {
		t.Fatalf("expected full id to resolve, got %q (%v)", got, err)
	}
	if _, err := st.ResolveRunID(ctx, "abc"); !errors.Is(err, ErrAmbiguousRun) {
		t.Fatalf("expected ErrAmbiguousRun, got %v", err)
	}
	for _, prefix := range []string{"", "abd", "%"} {
		if _, err := st.ResolveRunID(ctx, prefix); !errors.Is(err, ErrRunNotFound) {
			t.Fatalf("prefix %q: expected ErrRunNotFound, got %v", prefix, err)
		}
	}
}
