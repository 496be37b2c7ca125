package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Setenv("COUNTDOWN_CSV_URL", "")
	t.Setenv("COUNTDOWN_EDIT_URL", "")
	t.Setenv("COUNTDOWN_DATA_DIR", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.RefreshInterval() != 5*time.Minute {
		t.Errorf("RefreshInterval() = %v, want 5m", cfg.RefreshInterval())
	}
	if cfg.RevealDelay() != 10*time.Millisecond {
		t.Errorf("RevealDelay() = %v, want 10ms", cfg.RevealDelay())
	}
	if cfg.SheetTimeout() != 30*time.Second {
		t.Errorf("SheetTimeout() = %v, want 30s", cfg.SheetTimeout())
	}
	if cfg.Store.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.Store.DataDir, DefaultDataDir)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sheet.CSVURL != DefaultCSVURL {
		t.Errorf("CSVURL = %q, want default", cfg.Sheet.CSVURL)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sheet.CSVURL = "https://example.com/pub?output=csv"
	cfg.Refresh.Interval = "1m"
	cfg.Server.Addr = ":9000"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Sheet.CSVURL != "https://example.com/pub?output=csv" {
		t.Errorf("CSVURL = %q", loaded.Sheet.CSVURL)
	}
	if loaded.RefreshInterval() != time.Minute {
		t.Errorf("RefreshInterval() = %v, want 1m", loaded.RefreshInterval())
	}
	if loaded.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", loaded.Server.Addr)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("refresh:\n  interval: 90s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RefreshInterval() != 90*time.Second {
		t.Errorf("RefreshInterval() = %v, want 90s", cfg.RefreshInterval())
	}
	if cfg.Sheet.EditURL != DefaultEditURL {
		t.Errorf("EditURL = %q, want default", cfg.Sheet.EditURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COUNTDOWN_CSV_URL", "https://env.example.com/csv")
	t.Setenv("COUNTDOWN_EDIT_URL", "https://env.example.com/edit")
	t.Setenv("COUNTDOWN_DATA_DIR", "/tmp/countdown-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sheet:\n  csv_url: https://file.example.com/csv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sheet.CSVURL != "https://env.example.com/csv" {
		t.Errorf("CSVURL = %q, env should win over file", cfg.Sheet.CSVURL)
	}
	if cfg.Sheet.EditURL != "https://env.example.com/edit" {
		t.Errorf("EditURL = %q", cfg.Sheet.EditURL)
	}
	if cfg.Store.DataDir != "/tmp/countdown-env" {
		t.Errorf("DataDir = %q", cfg.Store.DataDir)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "sheet: [unclosed"},
		{"bad duration", "refresh:\n  interval: soon\n"},
		{"negative duration", "widget:\n  reveal_delay: -5ms\n"},
		{"empty csv url", "sheet:\n  csv_url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
