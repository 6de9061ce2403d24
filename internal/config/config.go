package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// ConfigPathEnvVar overrides the YAML file location.
	ConfigPathEnvVar  = "CONFIG_PATH"
	defaultConfigFile = "config.yaml"

	minSessionSecret = 32
)

type Config struct {
	Environment    string        `koanf:"environment"`
	Port           int           `koanf:"port"`
	DatabaseDriver string        `koanf:"database_driver"`
	DatabaseURL    string        `koanf:"database_url"`
	DBPoolSize     int           `koanf:"db_pool_size"`
	RedisURL       string        `koanf:"redis_url"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	CatalogPath    string        `koanf:"catalog_path"`
	TrendingPath   string        `koanf:"trending_path"`
	SessionSecret  string        `koanf:"session_secret"`
	SessionTTL     time.Duration `koanf:"session_ttl"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"`
	CORSOrigins    []string      `koanf:"cors_origins"`
	LoginRateLimit int           `koanf:"login_rate_limit"`
	SeedDemo       bool          `koanf:"seed_demo"`
}

func defaults() *Config {
	return &Config{
		Environment:    "development",
		Port:           8080,
		DatabaseDriver: DriverSQLite,
		DatabaseURL:    "file:ecom.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		DBPoolSize:     20,
		CacheTTL:       10 * time.Minute,
		CatalogPath:    "data/clean_data.csv",
		TrendingPath:   "data/trending_products.csv",
		SessionSecret:  "shopwiz-development-secret-change-me",
		SessionTTL:     24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "json",
		CORSOrigins:    []string{"*"},
		LoginRateLimit: 10,
	}
}

// Load layers struct defaults, an optional YAML file and the environment,
// in that order of increasing priority. Environment keys are the upper-case
// form of the koanf tags (PORT, REDIS_URL, ...).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	known := k.Keys()

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey(known)), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps an environment variable to its config key and returns "" for
// variables outside known, which the env provider then skips.
func envKey(known []string) func(string) string {
	keys := make(map[string]struct{}, len(known))
	for _, k := range known {
		keys[k] = struct{}{}
	}
	return func(name string) string {
		key := strings.ToLower(name)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	if c.CatalogPath == "" {
		errs = append(errs, errors.New("catalog path is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.IsProduction() && len(c.SessionSecret) < minSessionSecret {
		errs = append(errs, fmt.Errorf("session secret must be at least %d bytes in production", minSessionSecret))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
