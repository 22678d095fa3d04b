// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	DB        DBConfig        `mapstructure:"db"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	TrustRank TrustRankConfig `mapstructure:"trustrank"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CrawlerConfig governs the crawl worker pool.
type CrawlerConfig struct {
	Workers         int    `mapstructure:"workers"`
	MaxDepth        int    `mapstructure:"max_depth"`
	MaxPages        int64  `mapstructure:"max_pages"`
	UserAgent       string `mapstructure:"user_agent"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	IdleWaitSeconds int    `mapstructure:"idle_wait_seconds"`
	Debug           bool   `mapstructure:"debug"`
}

// TrustRankConfig tunes the trust propagation engine.
type TrustRankConfig struct {
	Damping       float64 `mapstructure:"damping"`
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// ServerConfig controls the operator HTTP endpoint.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RESONANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Debug runs are meant to be readable, single-threaded traces.
	if cfg.Crawler.Debug {
		cfg.Crawler.Workers = 1
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.workers", 10)
	v.SetDefault("crawler.max_depth", 4)
	v.SetDefault("crawler.max_pages", 0)
	v.SetDefault("crawler.timeout_seconds", 20)
	v.SetDefault("crawler.idle_wait_seconds", 5)
	v.SetDefault("crawler.debug", false)
	v.SetDefault("trustrank.damping", 0.82)
	v.SetDefault("trustrank.tolerance", 1.0)
	v.SetDefault("trustrank.max_iterations", 100)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be > 0")
	}
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.TrustRank.Damping <= 0 || c.TrustRank.Damping >= 1 {
		return fmt.Errorf("trustrank.damping must be in (0, 1)")
	}
	if c.TrustRank.MaxIterations <= 0 {
		return fmt.Errorf("trustrank.max_iterations must be > 0")
	}
	return nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}

// IdleWait converts the configured idle wait into a duration.
func (c Config) IdleWait() time.Duration {
	return time.Duration(c.Crawler.IdleWaitSeconds) * time.Second
}
