package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
registry = "https://registry.internal.example"
dir = "/srv/packages"
concurrency = 8
allowed_licenses = ["MIT", "Apache-2.0"]
metadata_timeout = "30s"
archive_timeout = "10m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Registry != "https://registry.internal.example" {
		t.Errorf("Registry = %q", cfg.Registry)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if len(cfg.AllowedLicenses) != 2 {
		t.Errorf("AllowedLicenses = %v", cfg.AllowedLicenses)
	}
	if cfg.MetadataTimeout.Duration != 30*time.Second {
		t.Errorf("MetadataTimeout = %v", cfg.MetadataTimeout.Duration)
	}
	if cfg.ArchiveTimeout.Duration != 10*time.Minute {
		t.Errorf("ArchiveTimeout = %v", cfg.ArchiveTimeout.Duration)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicitly named missing config should error")
	}
}

func TestLoadConfigDefaultMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config should not error: %v", err)
	}
	if cfg.Registry != "" || cfg.Concurrency != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}
