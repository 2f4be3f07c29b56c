// Package config loads the process configuration of the odatasearch command
// from odatasearch.yaml, ODATASEARCH_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/schemastore"
	"github.com/nlstn/go-odata-search/internal/search"
)

const (
	// FileName is the config file name searched in the working directory.
	FileName = "odatasearch"
	// EnvPrefix prefixes environment overrides, e.g. ODATASEARCH_SERVER_ADDR.
	EnvPrefix = "ODATASEARCH"
)

// Config is the odatasearch process configuration
type Config struct {
	Naming     NamingConfig `mapstructure:"naming"`
	Convention string       `mapstructure:"convention"`
	Server     ServerConfig `mapstructure:"server"`
	Search     SearchConfig `mapstructure:"search"`
	Index      IndexConfig  `mapstructure:"index"`
	Store      StoreConfig  `mapstructure:"store"`
	Log        LogConfig    `mapstructure:"log"`
}

// NamingConfig is the physical field naming
type NamingConfig struct {
	Namespace       string `mapstructure:"namespace"`
	LowercaseSuffix string `mapstructure:"lowercase_suffix"`
	SortSuffix      string `mapstructure:"sort_suffix"`
}

// ServerConfig configures the search endpoint
type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	ServerTiming bool   `mapstructure:"server_timing"`
}

// SearchConfig bounds result pages
type SearchConfig struct {
	DefaultTop int `mapstructure:"default_top"`
	MaxTop     int `mapstructure:"max_top"`
}

// IndexConfig locates the bluge index and its seed documents
type IndexConfig struct {
	// Path is the index directory, empty for an in-memory index
	Path string `mapstructure:"path"`
	// Documents is a JSON file of documents indexed on startup
	Documents string `mapstructure:"documents"`
}

// StoreConfig selects the schema store database
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with the defaults, the environment binding
// and the config file location set. An empty path searches odatasearch.yaml
// in the working directory, where a missing file is not an error.
func New(path string) *viper.Viper {
	v := viper.New()

	naming := search.DefaultNaming()
	v.SetDefault("naming.namespace", naming.Namespace)
	v.SetDefault("naming.lowercase_suffix", naming.LowercaseSuffix)
	v.SetDefault("naming.sort_suffix", naming.SortSuffix)
	v.SetDefault("convention", "verbatim")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.server_timing", true)
	v.SetDefault("search.default_top", 25)
	v.SetDefault("search.max_top", 1000)
	v.SetDefault("index.path", "")
	v.SetDefault("index.documents", "")
	v.SetDefault("store.driver", schemastore.DriverSQLite)
	v.SetDefault("store.dsn", "odatasearch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file of v and decodes and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the command cannot run with.
func (c *Config) Validate() error {
	if _, err := convention.ByName(c.Convention); err != nil {
		return fmt.Errorf("convention: %w", err)
	}
	if c.Naming.LowercaseSuffix == "" || c.Naming.SortSuffix == "" {
		return fmt.Errorf("naming: lowercase_suffix and sort_suffix are required")
	}
	if c.Naming.LowercaseSuffix == c.Naming.SortSuffix {
		return fmt.Errorf("naming: lowercase_suffix and sort_suffix must differ, both are %q", c.Naming.SortSuffix)
	}
	switch c.Store.Driver {
	case schemastore.DriverSQLite, schemastore.DriverPostgres:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", schemastore.DriverSQLite, schemastore.DriverPostgres, c.Store.Driver)
	}
	if c.Search.MaxTop <= 0 {
		return fmt.Errorf("search.max_top must be positive, got %d", c.Search.MaxTop)
	}
	if c.Search.DefaultTop <= 0 || c.Search.DefaultTop > c.Search.MaxTop {
		return fmt.Errorf("search.default_top must be between 1 and %d, got %d", c.Search.MaxTop, c.Search.DefaultTop)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SearchNaming returns the configured field naming.
func (c *Config) SearchNaming() search.Naming {
	return search.Naming{
		Namespace:       c.Naming.Namespace,
		LowercaseSuffix: c.Naming.LowercaseSuffix,
		SortSuffix:      c.Naming.SortSuffix,
	}
}

// NewLogger returns a logger writing to w in the configured format and level.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
