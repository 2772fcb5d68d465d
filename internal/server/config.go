package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hengadev/errsx"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by LoadConfig. Environment values
// override the config file.
const (
	EnvAddr        = "SERIALX_ADDR"
	EnvIndent      = "SERIALX_INDENT"
	EnvMaxDepth    = "SERIALX_MAX_DEPTH"
	EnvStoreDriver = "SERIALX_STORE_DRIVER"
	EnvStorePath   = "SERIALX_STORE_PATH"
	EnvStoreBucket = "SERIALX_STORE_BUCKET"
	EnvStorePrefix = "SERIALX_STORE_PREFIX"
	EnvStoreRegion = "SERIALX_STORE_REGION"
)

// Supported document store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// Config is the service configuration, read from an optional YAML file with
// environment overrides.
type Config struct {
	Addr string `yaml:"addr"`
	// Indent is the codec's pretty-print width; -1 means compact output.
	Indent   int         `yaml:"indent"`
	SortKeys bool        `yaml:"sort_keys"`
	MaxDepth int         `yaml:"max_depth"`
	Store    StoreConfig `yaml:"store"`
}

// StoreConfig selects and parameterizes the document store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`   // sqlite database file
	Bucket string `yaml:"bucket"` // s3 bucket name
	Prefix string `yaml:"prefix"` // s3 key prefix
	Region string `yaml:"region"` // aws region
}

// DefaultConfig returns the configuration used when no file and no
// environment overrides are present: two-space indented output, in-memory
// store.
func DefaultConfig() Config {
	return Config{
		Addr:     ":8080",
		Indent:   2,
		MaxDepth: 1000,
		Store: StoreConfig{
			Driver: DriverMemory,
			Prefix: "documents/",
		},
	}
}

// LoadConfig reads the YAML file at path (skipped when path is empty),
// applies environment overrides, and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvIndent); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indent = n
		}
	}
	if v := os.Getenv(EnvMaxDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDepth = n
		}
	}
	if v := os.Getenv(EnvStoreDriver); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvStoreBucket); v != "" {
		cfg.Store.Bucket = v
	}
	if v := os.Getenv(EnvStorePrefix); v != "" {
		cfg.Store.Prefix = v
	}
	if v := os.Getenv(EnvStoreRegion); v != "" {
		cfg.Store.Region = v
	}
}

// Validate collects all configuration problems instead of stopping at the
// first one.
func (c Config) Validate() error {
	var errs errsx.Map

	if c.Addr == "" {
		errs.Set("addr", fmt.Errorf("listen address must not be empty"))
	}
	if c.Indent < -1 {
		errs.Set("indent", fmt.Errorf("indent must be -1 (compact) or a non-negative width, got %d", c.Indent))
	}
	if c.MaxDepth <= 0 {
		errs.Set("max_depth", fmt.Errorf("max depth must be positive, got %d", c.MaxDepth))
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			errs.Set("store.path", fmt.Errorf("sqlite driver requires a database path"))
		}
	case DriverS3:
		if c.Store.Bucket == "" {
			errs.Set("store.bucket", fmt.Errorf("s3 driver requires a bucket name"))
		}
	default:
		errs.Set("store.driver", fmt.Errorf("unknown driver %q, want %s, %s or %s",
			c.Store.Driver, DriverMemory, DriverSQLite, DriverS3))
	}

	if !errs.IsEmpty() {
		return errs.AsError()
	}
	return nil
}
