package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
)

const (
	defaultDirName    = ".tana"
	defaultConfigName = ".tana.toml"
)

// config holds the optional file-based settings. Flags and environment
// variables take precedence over everything here.
type config struct {
	Dir      string `toml:"dir"`
	LogLevel string `toml:"log_level"`
}

// loadConfig reads the TOML config at path, or at ~/.tana.toml when path is
// empty. A missing file is not an error.
func loadConfig(path string) (config, error) {
	var cfg config

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, defaultConfigName)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if info.IsDir() {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveDir picks the catalog directory: the --dir flag or TANA_DIR first,
// then the config file, then ~/.tana.
func resolveDir(c *cli.Context, cfg config) (string, error) {
	if dir := c.String("dir"); dir != "" {
		return dir, nil
	}
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}
