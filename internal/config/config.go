// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	OnboardingPath string        `yaml:"onboarding_path"` // billing settings page
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	Migrate  bool   `yaml:"migrate"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // host:port or redis:// URL
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // offer catalog cache
}

type SimConfig struct {
	InventoryURL string        `yaml:"inventory_url"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	RateLimit    int           `yaml:"rate_limit"`  // upstream calls per window
	RateWindow   time.Duration `yaml:"rate_window"`
}

type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	CookieName   string        `yaml:"cookie_name"`
	CookieDomain string        `yaml:"cookie_domain"`
	SecureCookie bool          `yaml:"secure_cookie"`
	TTL          time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PoolInterval time.Duration `yaml:"pool_interval"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Sim      SimConfig      `yaml:"sim"`
	Session  SessionConfig  `yaml:"session"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

const envPrefix = "SIMPORTAL_"

// LoadConfig reads the YAML file at path, loads an optional .env file next to
// the working directory, applies SIMPORTAL_* overrides and defaults, then
// validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	cfg.Runtime.Dev = dev
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envPrefix + "DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv(envPrefix + "REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv(envPrefix + "REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv(envPrefix + "SESSION_SECRET"); v != "" {
		cfg.Session.Secret = v
	}
	if v := os.Getenv(envPrefix + "SIM_INVENTORY_URL"); v != "" {
		cfg.Sim.InventoryURL = v
	}
	if v := os.Getenv(envPrefix + "HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.HTTP.OnboardingPath == "" {
		cfg.HTTP.OnboardingPath = "/dashboard-user/settings"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL, time.Hour)
	if cfg.Sim.Timeout <= 0 {
		cfg.Sim.Timeout = 5 * time.Second
	}
	cfg.Sim.CacheTTL = normalizeTTL(cfg.Sim.CacheTTL, 10*time.Minute)
	if cfg.Sim.RateLimit <= 0 {
		cfg.Sim.RateLimit = 120
	}
	if cfg.Sim.RateWindow <= 0 {
		cfg.Sim.RateWindow = time.Minute
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "session"
	}
	cfg.Session.TTL = normalizeTTL(cfg.Session.TTL, 24*time.Hour)
	if cfg.Metrics.PoolInterval <= 0 {
		cfg.Metrics.PoolInterval = 30 * time.Second
	}
}

func (cfg *Config) validate() error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if !cfg.Runtime.Dev && len(cfg.Session.Secret) < 32 {
		return errors.New("session.secret must be at least 32 bytes")
	}
	return nil
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
