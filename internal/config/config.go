// Package config loads grocer settings from JSONC files and CLI overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tailscale/hujson"
)

// Backend names.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".grocer.json"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
	errUnknownBackend     = errors.New("unknown backend")
	errEmptyCategory      = errors.New("category name cannot be empty")
	errDuplicateCategory  = errors.New("duplicate category")
	errBadLogLevel        = errors.New("invalid log_level")
)

// S3 holds object-store settings for the s3 backend.
type S3 struct {
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	PathStyle bool   `json:"path_style,omitempty"`
}

// Config holds all configuration options.
type Config struct {
	Backend     string   `json:"backend"`
	DataDir     string   `json:"data_dir,omitempty"`
	Key         string   `json:"key,omitempty"`
	SQLitePath  string   `json:"sqlite_path,omitempty"`
	PostgresDSN string   `json:"postgres_dsn,omitempty"`
	S3          S3       `json:"s3,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	LogLevel    string   `json:"log_level,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	MetricsFile string   `json:"metrics_file,omitempty"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Overrides are CLI flag values; non-empty fields win over every file.
type Overrides struct {
	Backend  string
	DataDir  string
	Key      string
	Theme    string
	LogLevel string
}

// Default returns the default configuration.
func Default(env map[string]string) Config {
	return Config{
		Backend:  BackendFile,
		DataDir:  defaultDataDir(env),
		Key:      "grocer.list",
		Theme:    "classic",
		LogLevel: "warn",
	}
}

func lookupEnv(env map[string]string, key string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return os.Getenv(key)
}

// Dir returns the grocer config directory:
// $XDG_CONFIG_HOME/grocer if set, otherwise ~/.config/grocer.
// Returns empty string if the home directory cannot be determined.
func Dir(env map[string]string) string {
	if xdg := lookupEnv(env, "XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "grocer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "grocer")
}

func defaultDataDir(env map[string]string) string {
	if xdg := lookupEnv(env, "XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "grocer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "grocer")
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (<Dir>/config.json)
// 3. Project config file (.grocer.json in workDir), or the explicit configPath
// 4. CLI overrides.
func Load(workDir, configPath string, ov Overrides, env map[string]string) (Config, Sources, error) {
	cfg := Default(env)
	var sources Sources

	if dir := Dir(env); dir != "" {
		p := filepath.Join(dir, "config.json")
		globalCfg, loaded, err := loadFile(p, false)
		if err != nil {
			return Config{}, Sources{}, err
		}
		if loaded {
			sources.Global = p
			cfg = merge(cfg, globalCfg)
		}
	}

	projectPath := filepath.Join(workDir, FileName)
	mustExist := false
	if configPath != "" {
		projectPath = configPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
		mustExist = true
	}
	projectCfg, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, Sources{}, err
	}
	if loaded {
		sources.Project = projectPath
		cfg = merge(cfg, projectCfg)
	}

	cfg = merge(cfg, Config{
		Backend:  ov.Backend,
		DataDir:  ov.DataDir,
		Key:      ov.Key,
		Theme:    ov.Theme,
		LogLevel: ov.LogLevel,
	})

	if err := validate(cfg); err != nil {
		return Config{}, Sources{}, err
	}
	return cfg, sources, nil
}

// loadFile reads a JSONC config file. A missing optional file is not an error.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w: %s: %w", errConfigFileRead, path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return cfg, true, nil
}

// Parse decodes a JSONC document (comments and trailing commas allowed).
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Backend != "" {
		base.Backend = overlay.Backend
	}
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}
	if overlay.Key != "" {
		base.Key = overlay.Key
	}
	if overlay.SQLitePath != "" {
		base.SQLitePath = overlay.SQLitePath
	}
	if overlay.PostgresDSN != "" {
		base.PostgresDSN = overlay.PostgresDSN
	}
	if overlay.S3.Bucket != "" {
		base.S3.Bucket = overlay.S3.Bucket
	}
	if overlay.S3.Region != "" {
		base.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Endpoint != "" {
		base.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.Prefix != "" {
		base.S3.Prefix = overlay.S3.Prefix
	}
	if overlay.S3.PathStyle {
		base.S3.PathStyle = true
	}
	if overlay.Theme != "" {
		base.Theme = overlay.Theme
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if len(overlay.Categories) > 0 {
		base.Categories = append([]string(nil), overlay.Categories...)
	}
	if overlay.MetricsFile != "" {
		base.MetricsFile = overlay.MetricsFile
	}
	return base
}

func validate(cfg Config) error {
	switch cfg.Backend {
	case BackendFile, BackendSQLite, BackendPostgres, BackendS3, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, cfg.Backend)
	}
	seen := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		if strings.TrimSpace(c) == "" {
			return errEmptyCategory
		}
		// the CLI matches category names ignoring case
		k := strings.ToLower(c)
		if seen[k] {
			return fmt.Errorf("%w: %s", errDuplicateCategory, c)
		}
		seen[k] = true
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", errBadLogLevel, cfg.LogLevel)
	}
	return nil
}

// Format returns the config as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}
	return string(data), nil
}
