package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// set from the -env flag, not from the TOML file
	Environment string

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`

	SentryEnabled bool `toml:"sentry_enabled"`

	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// pose estimator service
	EstimatorURL             string  `toml:"estimator_url"`
	EstimatorTimeoutSeconds  int     `toml:"estimator_timeout_seconds"`
	EstimatorCacheTTLSeconds int     `toml:"estimator_cache_ttl_seconds"`
	EstimatorCacheSizeBytes  int     `toml:"estimator_cache_size_bytes"`
	MinDetectionConfidence   float64 `toml:"min_detection_confidence"`

	// frame uploads
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// rate limits
	LoginRateLimitAllowedPerMin   int `toml:"login_rate_limit_allowed_per_min"`
	AnalyzeRateLimitAllowedPerMin int `toml:"analyze_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing", env)
	}

	cfg.Environment = env
	return cfg, nil
}
