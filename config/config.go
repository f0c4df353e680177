// Package config loads, normalizes and validates the mtg-setxml
// configuration.
//
// Every setting has a default, so a configuration file is optional. Paths
// support the ~ shortcut and are made absolute.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the working directories.
type Paths struct {
	// IDsDir contains one file per set listing its multiverse IDs.
	IDsDir string `toml:"ids_dir"`
	// HTMLDir caches the downloaded card pages.
	HTMLDir string `toml:"html_dir"`
	// XMLDir receives the generated documents.
	XMLDir string `toml:"xml_dir"`
	// DebugDir receives the truncated documents generated with --debug.
	DebugDir string `toml:"debug_dir"`
}

// Gatherer contains the settings used to download card pages.
type Gatherer struct {
	BaseURL string `toml:"base_url"`
	// RequestInterval is the minimum delay between two requests, in
	// milliseconds.
	RequestInterval int    `toml:"request_interval_ms"`
	UserAgent       string `toml:"user_agent"`
	// Timeout of a request, in seconds.
	Timeout int `toml:"timeout_seconds"`
}

// Catalog selects where the set metadata comes from.
type Catalog struct {
	// Source is either "static" (the set list shipped with the binary, or
	// SetsFile) or "scryfall" (the static list, with its metadata refreshed
	// from Scryfall).
	Source string `toml:"source"`
	// SetsFile replaces the embedded set list.
	SetsFile string `toml:"sets_file"`
	// SpecialFile replaces the embedded double-faced and exclusion tables.
	SpecialFile string `toml:"special_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level string `toml:"level"`
}

// Run contains the generation settings.
type Run struct {
	// DebugLimit is the number of cards generated per set in debug mode.
	DebugLimit int `toml:"debug_limit"`
}

// Config encapsulates all the configuration values.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Gatherer Gatherer `toml:"gatherer"`
	Catalog  Catalog  `toml:"catalog"`
	Logging  Logging  `toml:"logging"`
	Run      Run      `toml:"run"`
}

// DefaultConfigPath returns the absolute path of the default configuration
// file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses and validates a configuration file. It returns the
// configuration, the path of the file and whether the file exists. A
// missing file isn't an error, the defaults are used instead.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// RequestInterval returns the minimum delay between two Gatherer requests.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.Gatherer.RequestInterval) * time.Millisecond
}

// RequestTimeout returns the timeout of a Gatherer request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Gatherer.Timeout) * time.Second
}

// UseScryfall reports whether the set metadata is refreshed from Scryfall.
func (c *Config) UseScryfall() bool {
	return c.Catalog.Source == CatalogScryfall
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath resolves ~ and makes a path absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
