// Package config loads newshub settings from YAML with environment overrides.
package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"newshub/internal/model"
	"newshub/internal/scheduler"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Configuration validation errors.
var (
	ErrUnknownDriver       = errors.New("database.driver must be 'sqlite' or 'postgres'")
	ErrMissingDatabaseURL  = errors.New("database.url is required for postgres")
	ErrSourceMissingName   = errors.New("source name is required")
	ErrSourceMissingType   = errors.New("source type is required")
	ErrDuplicateSourceName = errors.New("source names must be unique")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrNegativeDuration    = errors.New("duration must be non-negative")
	ErrInvalidScheduleTime = errors.New("invalid schedule time")
	ErrInvalidTimezone     = errors.New("invalid schedule timezone")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'json' or 'text'")
	ErrInvalidRateLimit    = errors.New("api.rate_limit values must be non-negative")
)

type Config struct {
	Database   DatabaseConfig `yaml:"database"`
	Redis      RedisConfig    `yaml:"redis"`
	Sources    []SourceConfig `yaml:"sources"`
	Categories []string       `yaml:"categories"`
	Ingest     IngestConfig   `yaml:"ingest"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	API        APIConfig      `yaml:"api"`
	Logging    LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type RedisConfig struct {
	URL     string `yaml:"url"`
	LockTTL string `yaml:"lock_ttl"`
}

// SourceConfig describes one news provider. The API key itself is never
// stored in the file; APIKeyEnv names the variable that holds it.
type SourceConfig struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Endpoint  string `yaml:"endpoint"`
	APIKeyEnv string `yaml:"api_key_env"`
	Country   string `yaml:"country"`
	Language  string `yaml:"language"`
	PageSize  int    `yaml:"page_size"`
	Enabled   bool   `yaml:"enabled"`
}

func (s SourceConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

type IngestConfig struct {
	Pause        string `yaml:"pause"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

type ScheduleConfig struct {
	Times      []string `yaml:"times"`
	RunOnStart bool     `yaml:"run_on_start"`
	Timezone   string   `yaml:"timezone"`
}

type APIConfig struct {
	Addr           string          `yaml:"addr"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles API requests per client. A zero rate disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newshub", "config.yaml")
}

func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, "newshub", "news.db")
}

func Default() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path (or the default location when empty) over the embedded
// defaults, applies environment overrides and validates the result. A
// missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.API.AllowedOrigins = append(c.API.AllowedOrigins, v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if c.Database.Driver == "sqlite" && c.Database.URL == "" {
		c.Database.URL = DefaultDatabasePath()
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownDriver, c.Database.Driver)
	}

	seen := make(map[string]bool)
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingName, i)
		}
		if s.Type == "" {
			return fmt.Errorf("%w: source %q", ErrSourceMissingType, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSourceName, s.Name)
		}
		seen[s.Name] = true
	}

	if _, err := c.CategoryList(); err != nil {
		return err
	}

	for field, value := range map[string]string{
		"ingest.pause":         c.Ingest.Pause,
		"ingest.fetch_timeout": c.Ingest.FetchTimeout,
		"redis.lock_ttl":       c.Redis.LockTTL,
	} {
		if _, err := parseDuration(field, value); err != nil {
			return err
		}
	}

	if _, err := c.ScheduleTimes(); err != nil {
		return err
	}
	if _, err := c.ScheduleLocation(); err != nil {
		return err
	}

	if c.API.RateLimit.RequestsPerSecond < 0 || c.API.RateLimit.Burst < 0 {
		return ErrInvalidRateLimit
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

// EnabledSources returns enabled sources in file order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// CategoryList returns the configured categories, or the full enumeration
// when none are listed.
func (c *Config) CategoryList() ([]model.Category, error) {
	if len(c.Categories) == 0 {
		return model.Categories(), nil
	}

	out := make([]model.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		cat, err := model.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		out = append(out, cat)
	}
	return out, nil
}

func (c *Config) PauseDuration() time.Duration {
	d, _ := parseDuration("ingest.pause", c.Ingest.Pause)
	return d
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, _ := parseDuration("ingest.fetch_timeout", c.Ingest.FetchTimeout)
	return d
}

func (c *Config) LockTTL() time.Duration {
	d, _ := parseDuration("redis.lock_ttl", c.Redis.LockTTL)
	if d == 0 {
		return 30 * time.Minute
	}
	return d
}

func (c *Config) ScheduleTimes() ([]scheduler.TimeOfDay, error) {
	out := make([]scheduler.TimeOfDay, 0, len(c.Schedule.Times))
	for _, s := range c.Schedule.Times {
		t, err := scheduler.ParseTimeOfDay(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScheduleTime, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Config) ScheduleLocation() (*time.Location, error) {
	if c.Schedule.Timezone == "" || c.Schedule.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Schedule.Timezone)
	}
	return loc, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, field, value)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrNegativeDuration, field, value)
	}
	return d, nil
}
