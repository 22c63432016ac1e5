package main

import (
	"path/filepath"
	"testing"

	"fabricsim/internal/config"
)

func TestExportConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	seed := uint64(42)
	cfg.Seed = &seed
	cfg.Database.Path = "none"

	path := filepath.Join(t.TempDir(), "nested", "fabricsim.yaml")
	if err := exportConfig(cfg, path); err != nil {
		t.Fatalf("exportConfig() error = %v", err)
	}

	loaded, _, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Seed == nil || *loaded.Seed != 42 {
		t.Errorf("Seed = %v, want 42", loaded.Seed)
	}
	if loaded.Database.Path != "none" {
		t.Errorf("Database.Path = %q, want none", loaded.Database.Path)
	}
	if got, want := len(loaded.Fabric.Aggregation), len(cfg.Fabric.Aggregation); got != want {
		t.Errorf("aggregations = %d, want %d", got, want)
	}
}

func TestExportConfigInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Latency.Min, cfg.Latency.Max = 5, 1

	if err := exportConfig(cfg, filepath.Join(t.TempDir(), "bad.yaml")); err == nil {
		t.Error("exportConfig() should reject a config that does not load back")
	}
}
