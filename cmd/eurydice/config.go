package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const configFile = "eurydice.toml"

// projectConfig is the optional per-project configuration file, discovered
// by walking up from the working directory.
type projectConfig struct {
	// Seed fixes the random source so a project replays identically.
	// Zero means "unset"; the clock seeds the interpreter instead.
	Seed int64 `toml:"seed,omitempty"`

	// MaxRerolls caps attempts made by the reroll builtin.
	MaxRerolls int `toml:"max_rerolls,omitempty"`
}

func loadProjectConfig(path string) (*projectConfig, error) {
	var config projectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &config, nil
}

// findProjectConfig searches for eurydice.toml starting from dir and
// walking up to parent directories. Returns ("", nil, nil) if not found;
// discovery stops at a repository boundary.
func findProjectConfig(dir string) (string, *projectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, configFile)
		if _, err := os.Stat(path); err == nil {
			config, err := loadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}
