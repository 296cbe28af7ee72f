package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// appName is the application name used for directories and display.
const appName = "depvault"

// Config holds file-configurable defaults. Command-line flags override
// anything set here.
type Config struct {
	Registry        string   `toml:"registry"`         // registry base URL
	Dir             string   `toml:"dir"`              // storage directory
	Concurrency     int      `toml:"concurrency"`      // per-dependency-list bound
	AllowedLicenses []string `toml:"allowed_licenses"` // license allow-list
	MetadataTimeout duration `toml:"metadata_timeout"` // e.g. "10s"
	ArchiveTimeout  duration `toml:"archive_timeout"`  // e.g. "5m"
}

// duration makes time.Duration usable in TOML as a string like "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(b))
	return err
}

// loadConfig reads the TOML config at path, or the default location when
// path is empty. A missing file at the default location yields a zero
// Config; an explicitly named file must exist.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file %s does not exist", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfigPath returns the XDG-standard config file location
// (~/.config/depvault/config.toml).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
