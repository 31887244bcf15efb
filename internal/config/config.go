// Package config loads ls-houses settings from defaults, an optional YAML
// file and LSHOUSES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
)

// FileName is the base name searched for in the config paths.
const FileName = "ls-houses"

// Config holds all application configuration.
type Config struct {
	Chart   ChartConfig   `mapstructure:"chart" yaml:"chart"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
}

// ChartConfig holds the defaults applied to chart requests.
type ChartConfig struct {
	System     string  `mapstructure:"system" yaml:"system"`
	Latitude   float64 `mapstructure:"latitude" yaml:"latitude"`
	Longitude  float64 `mapstructure:"longitude" yaml:"longitude"`
	Iterations int     `mapstructure:"iterations" yaml:"iterations"`
	Fallback   string  `mapstructure:"fallback" yaml:"fallback"`
	Units      string  `mapstructure:"units" yaml:"units"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  int    `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout" yaml:"write_timeout"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chart.system", "P")
	v.SetDefault("chart.latitude", 0.0)
	v.SetDefault("chart.longitude", 0.0)
	v.SetDefault("chart.iterations", houses.DefaultRefinementIterations)
	v.SetDefault("chart.fallback", "porphyry")
	v.SetDefault("chart.units", "degrees")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 7)
	v.SetDefault("logging.compress", true)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("store.path", "ls-houses.db")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := decode(newViper())
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Dir returns the per-user config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ls-houses")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "ls-houses")
	}
	return "."
}

// DefaultPath is where `config init` writes the file.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName+".yaml")
}

// Load reads configuration. An explicit path must exist; otherwise
// ls-houses.yaml is looked up in the working directory and Dir. A missing
// file is fine, an unreadable one is not.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: LSHOUSES_CHART_SYSTEM → chart.system
	v.SetEnvPrefix("LSHOUSES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if _, err := houses.ParseSystem(c.Chart.System); err != nil {
		errs = append(errs, fmt.Sprintf("chart.system: %v", err))
	}
	if c.Chart.Latitude < -90 || c.Chart.Latitude > 90 {
		errs = append(errs, fmt.Sprintf("chart.latitude must be -90..90, got %v", c.Chart.Latitude))
	}
	if c.Chart.Longitude < -180 || c.Chart.Longitude > 180 {
		errs = append(errs, fmt.Sprintf("chart.longitude must be -180..180, got %v", c.Chart.Longitude))
	}
	if c.Chart.Iterations < 0 {
		errs = append(errs, "chart.iterations must not be negative")
	}
	if _, err := houses.ParseFallback(c.Chart.Fallback); err != nil {
		errs = append(errs, fmt.Sprintf("chart.fallback: %v", err))
	}
	if _, err := chart.ParseUnits(c.Chart.Units); err != nil {
		errs = append(errs, fmt.Sprintf("chart.units: %v", err))
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Store.Path == "" {
		errs = append(errs, "store.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// HouseSystem returns the configured default system.
func (c *Config) HouseSystem() houses.System {
	sys, err := houses.ParseSystem(c.Chart.System)
	if err != nil {
		return houses.Placidus
	}
	return sys
}

// EngineOptions translates the chart settings into engine options.
func (c *Config) EngineOptions() []houses.Option {
	fallback, _ := houses.ParseFallback(c.Chart.Fallback)
	return []houses.Option{
		houses.WithRefinementIterations(c.Chart.Iterations),
		houses.WithFallback(fallback),
	}
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
