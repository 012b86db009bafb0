package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"plagiarism_detection/internal/workspace"
)

const FileName = "config.yaml"

// DetectionConfig holds the scoring and filtering parameters.
type DetectionConfig struct {
	Threshold  float64 `yaml:"threshold"`
	Closeness  int     `yaml:"closeness"`
	Language   string  `yaml:"language"`
	DBCeiling  float64 `yaml:"db_ceiling"`
	WebCeiling float64 `yaml:"web_ceiling"`
}

// ArchiveConfig points at the reference archive. An empty DSN resolves to the
// SQLite file in the workspace.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
	Store   bool   `yaml:"store"`
}

type WebConfig struct {
	Citations         bool    `yaml:"citations"`
	Topic             bool    `yaml:"topic"`
	SearchURL         string  `yaml:"search_url"`
	UserAgent         string  `yaml:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Detection DetectionConfig `yaml:"detection"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Web       WebConfig       `yaml:"web"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Output    string          `yaml:"output"`
}

// Load reads a config from path on top of the defaults. A missing file yields
// the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then the workspace config. If neither
// exists, it writes defaults to the workspace config and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	root, err := workspace.EnsureDefault()
	if err != nil {
		return nil, "", err
	}
	userPath := workspace.ConfigPath(root)
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() *AppConfig {
	return &AppConfig{
		Detection: DetectionConfig{Threshold: 0.7, Closeness: 3, Language: "spanish", DBCeiling: 0.95, WebCeiling: 0.99},
		Archive:   ArchiveConfig{Enabled: true},
		Web:       WebConfig{Citations: true, Topic: true, UserAgent: "Mozilla/5.0", TimeoutSecs: 10, Workers: 4, RequestsPerSecond: 2},
		Log:       LogConfig{Level: "info", Format: "auto"},
		Server:    ServerConfig{Addr: ":8080", MaxUploadMB: 32},
		Output:    "results.json",
	}
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Detection.Language == "" {
		cfg.Detection.Language = def.Detection.Language
	}
	if cfg.Detection.DBCeiling == 0 {
		cfg.Detection.DBCeiling = def.Detection.DBCeiling
	}
	if cfg.Detection.WebCeiling == 0 {
		cfg.Detection.WebCeiling = def.Detection.WebCeiling
	}
	if cfg.Web.TimeoutSecs == 0 {
		cfg.Web.TimeoutSecs = def.Web.TimeoutSecs
	}
	if cfg.Web.Workers == 0 {
		cfg.Web.Workers = def.Web.Workers
	}
	if cfg.Web.UserAgent == "" {
		cfg.Web.UserAgent = def.Web.UserAgent
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
	if cfg.Output == "" {
		cfg.Output = def.Output
	}
}

// ApplyEnv overrides selected fields from PLAGIARISM_* environment variables.
func (c *AppConfig) ApplyEnv() error {
	if v := os.Getenv("PLAGIARISM_ARCHIVE_DSN"); v != "" {
		c.Archive.DSN = v
	}
	if v := os.Getenv("PLAGIARISM_SEARCH_URL"); v != "" {
		c.Web.SearchURL = v
	}
	if v := os.Getenv("PLAGIARISM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PLAGIARISM_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PLAGIARISM_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PLAGIARISM_THRESHOLD: %w", err)
		}
		c.Detection.Threshold = f
	}
	return nil
}

func (c *AppConfig) Validate() error {
	d := c.Detection
	if d.Threshold < 0 || d.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %v", d.Threshold)
	}
	if d.Closeness < 0 || d.Closeness > 10 {
		return fmt.Errorf("closeness must be between 0 and 10, got %d", d.Closeness)
	}
	if d.DBCeiling <= 0 || d.DBCeiling > 1 || d.WebCeiling <= 0 || d.WebCeiling > 1 {
		return fmt.Errorf("ceilings must be in (0,1], got %v and %v", d.DBCeiling, d.WebCeiling)
	}
	if c.Web.TimeoutSecs < 0 || c.Web.Workers < 0 || c.Web.RequestsPerSecond < 0 {
		return errors.New("web timeout, workers and rate must not be negative")
	}
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
