// Package config loads the core's on-disk configuration. The core never
// reads environment variables for behavior (spec §6, "No other I/O") — the
// data root, retention window, and response-token budget are either passed
// explicitly by the embedding process or loaded once, here, from a TOML file
// and threaded through as plain values (Design Notes, "Global per-process
// state").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the deployment-level knobs the core treats as configuration,
// not as hardcoded constants.
type Config struct {
	// DataRoot is the directory holding master.db and databases/. Defaults to
	// "~/.task-mcp" (spec §6) when unset.
	DataRoot string `toml:"data_root"`

	// RetentionDays is the default retention window for cleanup_deleted_tasks
	// when the caller doesn't supply one (spec §4.4). Defaults to 30.
	RetentionDays int `toml:"retention_days"`

	// MaxResponseTokens is the response-size ceiling from spec §4.6. Defaults
	// to 15000; the spec treats 15000 as a soft systems constant adjustable
	// at build time (§9).
	MaxResponseTokens int `toml:"max_response_tokens"`

	// WarnResponseTokens is the non-fatal warning threshold from spec §4.6.
	// Defaults to 12000.
	WarnResponseTokens int `toml:"warn_response_tokens"`
}

// Defaults returns the spec-mandated defaults with no file on disk consulted.
func Defaults() Config {
	home, err := os.UserHomeDir()
	root := ".task-mcp"
	if err == nil {
		root = filepath.Join(home, ".task-mcp")
	}
	return Config{
		DataRoot:           root,
		RetentionDays:      30,
		MaxResponseTokens:  15000,
		WarnResponseTokens: 12000,
	}
}

// Load reads a TOML config file at path, overlaying it on Defaults(). A
// missing file is not an error — it just means the defaults stand.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is an explicit, caller-supplied config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	if cfg.MaxResponseTokens <= 0 {
		cfg.MaxResponseTokens = 15000
	}
	if cfg.WarnResponseTokens <= 0 {
		cfg.WarnResponseTokens = 12000
	}
	return cfg, nil
}
