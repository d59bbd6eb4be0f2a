package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Workers", cfg.Workers, 4},
		{"Output", cfg.Output, "ir_features.csv"},
		{"PerFile", cfg.PerFile, false},
		{"LoopMarker", cfg.LoopMarker, "loop:"},
		{"ClangPath", cfg.ClangPath, "clang"},
		{"OptPath", cfg.OptPath, "opt"},
		{"NoCache", cfg.NoCache, false},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
		{"empty output", func(c *Config) { c.Output = "" }, true},
		{"empty loop marker", func(c *Config) { c.LoopMarker = "" }, true},
		{"empty clang path", func(c *Config) { c.ClangPath = "" }, true},
		{"empty opt path", func(c *Config) { c.OptPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "workers: 8\nper_file: true\noutput: rows.csv\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if !cfg.PerFile {
		t.Error("PerFile = false, want true")
	}
	if cfg.Output != "rows.csv" {
		t.Errorf("Output = %q, want rows.csv", cfg.Output)
	}
	// Untouched fields keep their defaults.
	if cfg.LoopMarker != "loop:" {
		t.Errorf("LoopMarker = %q, want default", cfg.LoopMarker)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IFQ_WORKERS", "16")
	t.Setenv("IFQ_NO_CACHE", "true")
	t.Setenv("IFQ_LOOP_MARKER", "llvm.loop")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Workers != 16 {
		t.Errorf("Workers = %d, want 16", cfg.Workers)
	}
	if !cfg.NoCache {
		t.Error("NoCache = false, want true")
	}
	if cfg.LoopMarker != "llvm.loop" {
		t.Errorf("LoopMarker = %q, want llvm.loop", cfg.LoopMarker)
	}
}

func TestEnvOverrides_BadWorkerCountIgnored(t *testing.T) {
	t.Setenv("IFQ_WORKERS", "zero")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ifq", "config.yaml")

	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.PerFile = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Workers != 2 || !loaded.PerFile {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
