package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scalelist/pkg/cache"
	"github.com/matzehuels/scalelist/pkg/store"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Default values for the configuration.
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Config is the parsed configuration file.
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// CacheConfig selects the result and artifact cache.
type CacheConfig struct {
	// Backend is one of: file | redis | none.
	Backend string `yaml:"backend"`

	// Dir is the file cache directory. Empty means $XDG_CACHE_HOME/scalelist.
	Dir string `yaml:"dir"`

	RedisURL    string `yaml:"redis_url"`
	RedisURLEnv string `yaml:"redis_url_env"`

	// TTL is how long evaluated results stay cached (default 7 days).
	TTL time.Duration `yaml:"ttl"`

	// Prefix scopes every result and artifact key, so several deployments
	// can share one cache backend. Empty means unscoped keys.
	Prefix string `yaml:"prefix"`
}

// Keyer returns the cache keyer for this section.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Prefix)
}

// URL returns the redis URL, preferring the environment variable.
func (c CacheConfig) URL() string {
	if c.RedisURLEnv != "" {
		if v := os.Getenv(c.RedisURLEnv); v != "" {
			return v
		}
	}
	return c.RedisURL
}

// StoreConfig selects the node snapshot store.
type StoreConfig struct {
	// Driver is one of: file | sqlite | postgres | mongo.
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	DSNEnv   string `yaml:"dsn_env"`
	Database string `yaml:"database"`
	Dir      string `yaml:"dir"`
}

// Options converts the section into store options, resolving DSNEnv.
func (s StoreConfig) Options() store.Config {
	dsn := s.DSN
	if s.DSNEnv != "" {
		if v := os.Getenv(s.DSNEnv); v != "" {
			dsn = v
		}
	}
	return store.Config{Driver: s.Driver, DSN: dsn, Database: s.Database, Dir: s.Dir}
}

// ServerConfig configures `scalelist serve`.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LogConfig sets the default log level. The -v flag overrides it.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ParsedLevel returns the configured level.
func (l LogConfig) ParsedLevel() log.Level {
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DefaultPath returns ~/.config/scalelist/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "scalelist", "config.yaml"), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return defaults()
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path. An empty path means DefaultPath, and a missing
// default file yields Default. A missing explicit path is an error.
func LoadOrDefault(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     cache.TTLResult,
		},
		Store: StoreConfig{
			Driver: store.DriverFile,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			CORSOrigins:    []string{"*"},
			RequestTimeout: DefaultRequestTimeout,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if cfg.Cache.URL() == "" {
			return fmt.Errorf("cache.redis_url or cache.redis_url_env is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q unknown: want file|redis|none", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}

	switch cfg.Store.Driver {
	case store.DriverFile, store.DriverSQLite, store.DriverPostgres, store.DriverMongo:
	default:
		return fmt.Errorf("store.driver %q unknown: want file|sqlite|postgres|mongo", cfg.Store.Driver)
	}

	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}

	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	return nil
}
