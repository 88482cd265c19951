// Package config loads project settings from scr-tools.toml, discovered by
// walking up from the working directory. Missing or unreadable files fall
// back to defaults so the tools work out of the box.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/scr-community/scr-dev-tools/internal/formatter"
)

// FileName is the project manifest looked up by Find.
const FileName = "scr-tools.toml"

// Format controls the indentation the formatter emits.
type Format struct {
	Style string `toml:"style"` // "tabs" or "spaces"
	Width int    `toml:"width"` // spaces per level when Style is "spaces"
}

// Checker points at the external semantic checker binary, if any.
type Checker struct {
	Binary string   `toml:"binary"`
	Args   []string `toml:"args"`
}

type Config struct {
	Format  Format  `toml:"format"`
	Checker Checker `toml:"checker"`
	// Commands lists extra command-table JSON files layered over the
	// built-in table, relative paths resolved against the project root.
	Commands []string `toml:"commands"`
}

func Default() Config {
	return Config{Format: Format{Style: "tabs", Width: 4}}
}

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Format.Style != "tabs" && cfg.Format.Style != "spaces" {
		return Default(), fmt.Errorf("parse %s: format.style must be \"tabs\" or \"spaces\", got %q", path, cfg.Format.Style)
	}
	if cfg.Format.Width <= 0 {
		cfg.Format.Width = 4
	}
	return cfg, nil
}

// Find walks up from startDir to locate the project manifest.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadForDir resolves the config governing dir. Every failure mode yields
// the defaults: configuration must never stop the tools from running.
func LoadForDir(dir string) (Config, string) {
	path, ok, err := Find(dir)
	if err != nil || !ok {
		return Default(), ""
	}
	cfg, err := Load(path)
	if err != nil {
		return Default(), ""
	}
	return cfg, filepath.Dir(path)
}

// FormatterOptions translates the format section for the formatter.
func (c Config) FormatterOptions() formatter.Options {
	return formatter.Options{
		InsertSpaces: c.Format.Style == "spaces",
		TabSize:      c.Format.Width,
	}
}
