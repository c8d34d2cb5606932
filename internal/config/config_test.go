package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", "")
	t.Setenv("LIBRARY_DB", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LibraryDB == "" {
		t.Fatal("expected default library db path")
	}
	if cfg.MatchThreshold != 90 {
		t.Fatalf("expected threshold 90, got %d", cfg.MatchThreshold)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	body := "library_db: /tmp/lib.db\nmatch_threshold: 85\nwrite_workbook: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LibraryDB != "/tmp/lib.db" {
		t.Fatalf("expected yaml library db, got %q", cfg.LibraryDB)
	}
	if cfg.MatchThreshold != 85 {
		t.Fatalf("expected threshold 85, got %d", cfg.MatchThreshold)
	}
	if !cfg.WriteWorkbook {
		t.Fatal("expected workbook enabled")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", "")
	t.Setenv("MATCH_THRESHOLD", "150")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}
