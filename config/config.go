// Package config loads user settings for the interactive interpreter.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// RelPath is the location of the config file below the XDG config directories.
const RelPath = "lox/config.yaml"

type Config struct {
	// Prompt is shown before each REPL line.
	Prompt string `yaml:"prompt"`
	// History is the REPL history file. An empty string disables history.
	History string `yaml:"history"`
	// HistoryLimit caps the number of lines kept in History. Zero or less keeps everything.
	HistoryLimit int `yaml:"history_limit"`
}

// Error reports a config file that exists but cannot be read or decoded.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Default() Config {
	return Config{
		Prompt:       "> ",
		History:      filepath.Join(xdg.DataHome, "lox", "history"),
		HistoryLimit: 1000,
	}
}

// Load reads the config at path, or the first lox/config.yaml found in the
// XDG config directories when path is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(RelPath)
		if err != nil {
			return Default(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, &Error{Path: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
