package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Editor struct {
		MaxUndoDepth      int `yaml:"max_undo_depth"`
		DefaultDepthLimit int `yaml:"default_depth_limit"`
	} `yaml:"editor"`
	Autosave struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"autosave"`
	Log struct {
		Mode string `yaml:"mode"` // "dev" or "prod"
	} `yaml:"log"`
	StyleExclusions []StyleExclusion `yaml:"style_exclusions"`
}

// StyleExclusion names heading styles that must not survive as separate
// nodes at a given level. The UI layer normally derives these from per-style
// nesting levels; the config file lets batch runs supply them directly.
type StyleExclusion struct {
	Level  int      `yaml:"level"`
	Styles []string `yaml:"styles"`
}

// ExclusionMap converts the configured list into the merge engine's
// level -> excluded-styles form.
func (c *Config) ExclusionMap() map[int]map[string]bool {
	if len(c.StyleExclusions) == 0 {
		return nil
	}
	m := make(map[int]map[string]bool, len(c.StyleExclusions))
	for _, e := range c.StyleExclusions {
		if m[e.Level] == nil {
			m[e.Level] = make(map[string]bool, len(e.Styles))
		}
		for _, style := range e.Styles {
			m[e.Level][style] = true
		}
	}
	return m
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Editor.MaxUndoDepth = 50
	cfg.Autosave.Path = "docforge-autosave.db"
	cfg.Log.Mode = "dev"
	return &cfg
}

// LoadConfig reads the YAML config file, falling back to defaults when the
// file does not exist, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if v := os.Getenv("DOCFORGE_AUTOSAVE_PATH"); v != "" {
		cfg.Autosave.Path = v
	}
	if v := os.Getenv("DOCFORGE_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("DOCFORGE_MAX_UNDO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.MaxUndoDepth = n
		}
	}

	return cfg, nil
}
