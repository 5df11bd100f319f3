package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the runtime configuration. Precedence is command-line flags,
// then environment variables (PIVOTEKA_*), then the config file, then defaults.
type Config struct {
	Addr    string
	DBPath  string
	LogPath string
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Addr:   ":8080",
		DBPath: "pivoteka.sqlite3",
	}
}

// DefaultPath returns the default configuration file path,
// ~/.pivoteka/config.toml, or "" if the home directory is not accessible.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pivoteka", "config.toml")
	}
	return ""
}

// Path resolves the config file path: the flag value if set, then
// $PIVOTEKA_CONFIG, then DefaultPath().
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("PIVOTEKA_CONFIG"); env != "" {
		return env
	}
	return DefaultPath()
}

// fileConfig mirrors Config with TOML field names.
type fileConfig struct {
	Addr    string `toml:"addr"`
	DBPath  string `toml:"db"`
	LogPath string `toml:"log"`
}

// ApplyFile reads a TOML config file and applies it to cfg, skipping fields
// whose flags were explicitly set (changed map). A missing file is not an
// error.
func ApplyFile(cfg *Config, path string, changed map[string]bool) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	s := setter{changed: changed}
	s.setString("addr", fc.Addr, &cfg.Addr)
	s.setString("db", fc.DBPath, &cfg.DBPath)
	s.setString("log", fc.LogPath, &cfg.LogPath)
	return nil
}

// ApplyEnv applies PIVOTEKA_* environment variables to cfg, skipping fields
// whose flags were explicitly set. Called after ApplyFile so the environment
// overrides the file.
func ApplyEnv(cfg *Config, changed map[string]bool) {
	s := setter{changed: changed}
	s.setString("addr", os.Getenv("PIVOTEKA_ADDR"), &cfg.Addr)
	s.setString("db", os.Getenv("PIVOTEKA_DB"), &cfg.DBPath)
	s.setString("log", os.Getenv("PIVOTEKA_LOG"), &cfg.LogPath)
}

// setter applies non-empty values unless the matching flag was set explicitly.
type setter struct {
	changed map[string]bool
}

func (s setter) setString(flag, value string, dst *string) {
	if value != "" && !s.changed[flag] {
		*dst = value
	}
}
