package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrMissingEnvConfig = errors.New("config for env not found")

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	DBHost string `toml:"db_host"`
	DBPort string `toml:"db_port"`
	DBName string `toml:"db_name"`
	DBUser string `toml:"db_user"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	ToolsRateLimitPerMinute int      `toml:"tools_rate_limit_per_minute"`
	AllowedOrigins          []string `toml:"allowed_origins"`

	// upstreams
	OpenMeteoBaseURL     string `toml:"open_meteo_base_url"`
	SunriseSunsetBaseURL string `toml:"sunrise_sunset_base_url"`
	OpenAQBaseURL        string `toml:"open_aq_base_url"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnvConfig, env)
	}

	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.ToolsRateLimitPerMinute <= 0 {
		c.ToolsRateLimitPerMinute = 60
	}
	if c.OpenMeteoBaseURL == "" {
		c.OpenMeteoBaseURL = "https://api.open-meteo.com"
	}
	if c.SunriseSunsetBaseURL == "" {
		c.SunriseSunsetBaseURL = "https://api.sunrise-sunset.org"
	}
	if c.OpenAQBaseURL == "" {
		c.OpenAQBaseURL = "https://api.openaq.org"
	}
}

// Load reads the TOML file at path and returns the config for the given env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}
