package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "15m" or "30s" parse.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string (e.g. "5m", "30s").
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the coinlens dashboard.
type Config struct {
	Storage   Storage         `yaml:"storage"`
	Server    Server          `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Logging   Logging         `yaml:"logging"`
	Refresh   RefreshConfig   `yaml:"refresh"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir     string `yaml:"data_dir"`     // parquet snapshot archive root
	SQLitePath  string `yaml:"sqlite_path"`  // knowledge corpus database
	SessionPath string `yaml:"session_path"` // session key-value store file
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProviderConfig holds credentials and endpoints for one market-data provider.
type ProviderConfig struct {
	BaseURL         string   `yaml:"base_url"`
	APIKey          string   `yaml:"api_key"`
	CacheTTL        Duration `yaml:"cache_ttl"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

// ProvidersConfig configures the primary and secondary market-data sources.
type ProvidersConfig struct {
	Primary   ProviderConfig `yaml:"primary"`
	Secondary ProviderConfig `yaml:"secondary"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RefreshConfig controls background refetch behaviour.
type RefreshConfig struct {
	Interval     Duration `yaml:"interval"`      // background refresh period
	FetchTimeout Duration `yaml:"fetch_timeout"` // per-fetch abandonment window
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies defaults, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyDefaults fills fields the YAML file may omit.
func applyDefaults(cfg *Config) {
	if cfg.Providers.Primary.CacheTTL == 0 {
		cfg.Providers.Primary.CacheTTL = Duration(time.Minute)
	}
	if cfg.Providers.Secondary.CacheTTL == 0 {
		cfg.Providers.Secondary.CacheTTL = Duration(15 * time.Minute)
	}
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = Duration(5 * time.Minute)
	}
	if cfg.Refresh.FetchTimeout == 0 {
		cfg.Refresh.FetchTimeout = Duration(30 * time.Second)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("SESSION_PATH"); v != "" {
		cfg.Storage.SessionPath = v
	}

	if v := os.Getenv("PRIMARY_API_KEY"); v != "" {
		cfg.Providers.Primary.APIKey = v
	}

	if v := os.Getenv("PRIMARY_BASE_URL"); v != "" {
		cfg.Providers.Primary.BaseURL = v
	}

	if v := os.Getenv("SECONDARY_API_KEY"); v != "" {
		cfg.Providers.Secondary.APIKey = v
	}

	if v := os.Getenv("SECONDARY_BASE_URL"); v != "" {
		cfg.Providers.Secondary.BaseURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
