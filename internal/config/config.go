// Package config loads and validates scraper configuration from an
// optional YAML file, SCRAPER_-prefixed environment variables, and
// built-in defaults, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration shared by every command.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Report  ReportConfig  `mapstructure:"report"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DataConfig locates the snapshot data directory.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// ScrapeConfig tunes the storefront fetch loop.
type ScrapeConfig struct {
	PageSize    int           `mapstructure:"page_size"`
	Delay       time.Duration `mapstructure:"delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	Proxies     []string      `mapstructure:"proxies"`
	MaxPages    int           `mapstructure:"max_pages"`
	Verify      bool          `mapstructure:"verify"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// ReportConfig tunes chart and PDF generation.
type ReportConfig struct {
	// Dir overrides the default <data.dir>/reports output root.
	Dir  string `mapstructure:"dir"`
	Bins int    `mapstructure:"bins"`
	TopN int    `mapstructure:"top_n"`
}

// ServerConfig tunes the read-only HTTP viewer.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig selects the logger profile.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from the given file path, falling back to a
// config.yaml in the working directory when path is empty. Environment
// variables such as SCRAPER_DATA_DIR override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "data")
	v.SetDefault("scrape.page_size", 250)
	v.SetDefault("scrape.delay", "1s")
	v.SetDefault("scrape.timeout", "10s")
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.proxies", []string{})
	v.SetDefault("scrape.max_pages", 0)
	v.SetDefault("scrape.verify", true)
	v.SetDefault("scrape.metrics_addr", "")
	v.SetDefault("report.dir", "")
	v.SetDefault("report.bins", 20)
	v.SetDefault("report.top_n", 10)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.development", true)
}

// Validate checks invariants that would otherwise fail deep inside a
// run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return errors.New("data.dir is required")
	}
	if c.Scrape.PageSize < 1 || c.Scrape.PageSize > 250 {
		return fmt.Errorf("scrape.page_size must be between 1 and 250, got %d", c.Scrape.PageSize)
	}
	if c.Scrape.Delay < 0 {
		return errors.New("scrape.delay must be >= 0")
	}
	if c.Scrape.Timeout <= 0 {
		return errors.New("scrape.timeout must be > 0")
	}
	if c.Scrape.MaxPages < 0 {
		return errors.New("scrape.max_pages must be >= 0")
	}
	for _, p := range c.Scrape.Proxies {
		if err := validateProxyURL(p); err != nil {
			return err
		}
	}
	if c.Report.Bins < 1 {
		return errors.New("report.bins must be >= 1")
	}
	if c.Report.TopN < 1 {
		return errors.New("report.top_n must be >= 1")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

func validateProxyURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid proxy url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("proxy url %q must use http, https, or socks5", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("proxy url %q has no host", raw)
	}
	return nil
}

// ReportDir resolves the report output root, defaulting to a reports
// directory under the data directory.
func (c Config) ReportDir() string {
	if c.Report.Dir != "" {
		return c.Report.Dir
	}
	return filepath.Join(c.Data.Dir, "reports")
}
