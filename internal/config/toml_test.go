package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Report.Input != nil || cfg.History.Record != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigReportSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[report]
input = "exports"
chunk-weeks = 4
basic = true

[history]
record = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Report.Input == nil || *cfg.Report.Input != "exports" {
		t.Fatalf("unexpected input: %v", cfg.Report.Input)
	}
	if cfg.Report.ChunkWeeks == nil || *cfg.Report.ChunkWeeks != 4 {
		t.Fatalf("unexpected chunk-weeks: %v", cfg.Report.ChunkWeeks)
	}
	if cfg.Report.Basic == nil || !*cfg.Report.Basic {
		t.Fatalf("expected basic=true")
	}
	if cfg.Report.Output != nil {
		t.Fatalf("expected output to be unset")
	}
	if cfg.History.Record == nil || !*cfg.History.Record {
		t.Fatalf("expected history record=true")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[report]\nweeks = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
