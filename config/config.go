// Package config reads the tool configuration from json5 files.
//
// Read merges the following files, later ones taking priority:
//  1. built in defaults
//  2. <name>.<ext>
//  3. <name>.local.<ext>
//
// Missing files are skipped.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/Bwc9876/wcu-course-db/catalog"
	"github.com/Bwc9876/wcu-course-db/fetch"
	"github.com/titanous/json5"
)

const DatabaseEnv = "DATABASE_CONNECTION_STRING"

type Fetch struct {
	// a negative value disables retries
	MaxRetries        int     `json:"max_retries"`
	BackoffBaseMs     int     `json:"backoff_base_ms"`
	MaxBackoffMs      int     `json:"max_backoff_ms"`
	TimeoutMs         int     `json:"timeout_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	UserAgent         string  `json:"user_agent"`
}

type Config struct {
	CatalogURL     string `json:"catalog_url"`
	IndexURL       string `json:"index_url"`
	Cache          string `json:"cache"`
	DefaultSubject string `json:"default_subject"`
	Concurrency    int    `json:"concurrency"`
	LogLevel       string `json:"log_level"`
	DatabaseURL    string `json:"database_url"`
	Fetch          Fetch  `json:"fetch"`
}

func Default() Config {
	defaults := fetch.DefaultConfig()
	return Config{
		CatalogURL:     catalog.CatalogURL,
		IndexURL:       catalog.IndexURL,
		Cache:          "courses.json",
		DefaultSubject: "CSC",
		Concurrency:    1,
		LogLevel:       "info",
		Fetch: Fetch{
			MaxRetries:    defaults.MaxRetries,
			BackoffBaseMs: int(defaults.BackoffBase / time.Millisecond),
			MaxBackoffMs:  int(defaults.MaxBackoff / time.Millisecond),
			TimeoutMs:     int(defaults.Timeout / time.Millisecond),
			UserAgent:     defaults.UserAgent,
		},
	}
}

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), strings.TrimPrefix(ext, ".")
}

func readFile(path string, out *Config) (bool, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var override Config
	if err := json5.Unmarshal(content, &override); err != nil {
		return false, fmt.Errorf("%v: %w", path, err)
	}
	if err := mergo.Merge(out, override, mergo.WithOverride); err != nil {
		return false, fmt.Errorf("%v: %w", path, err)
	}
	return true, nil
}

// Read loads the configuration at name, ex: config.json5, along with its
// local override, ex: config.local.json5.
func Read(name string) (Config, error) {
	out := Default()

	prefix, ext := splitExt(name)
	localName := fmt.Sprintf("%v.local.%v", prefix, ext)

	for _, path := range []string{name, localName} {
		found, err := readFile(path, &out)
		if err != nil {
			return Default(), err
		}
		if found {
			slog.Debug("merged config", "path", path)
		}
	}

	return out, nil
}

func (c Config) FetchConfig() fetch.Config {
	return fetch.Config{
		MaxRetries:        max(c.Fetch.MaxRetries, 0),
		BackoffBase:       time.Duration(c.Fetch.BackoffBaseMs) * time.Millisecond,
		MaxBackoff:        time.Duration(c.Fetch.MaxBackoffMs) * time.Millisecond,
		Timeout:           time.Duration(c.Fetch.TimeoutMs) * time.Millisecond,
		RequestsPerSecond: c.Fetch.RequestsPerSecond,
		UserAgent:         c.Fetch.UserAgent,
	}
}

// Database returns the Postgres connection string, falling back to the
// DATABASE_CONNECTION_STRING environment variable.
func (c Config) Database() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return os.Getenv(DatabaseEnv)
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
