package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ListenAddr   string        `yaml:"listen_addr"`
	LogLevel     string        `yaml:"log_level"`
	Shards       int           `yaml:"shards"`
	MaxCPU       int           `yaml:"max_cpu"`
	ShutdownWait time.Duration `yaml:"shutdown_wait"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`

	ExportDriver string        `yaml:"export_driver"`
	DatabaseURL  string        `yaml:"database_url"`
	ExportEvery  time.Duration `yaml:"export_every"`
}

func defaults() Config {
	return Config{
		ListenAddr:   ":3000",
		LogLevel:     "info",
		Shards:       64,
		ShutdownWait: 5 * time.Second,
		MaxBodyBytes: 1 << 20,
		ExportEvery:  10 * time.Second,
	}
}

// Parse builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Parse() (*Config, error) {
	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &c); err != nil {
			return nil, err
		}
	}

	var errs error
	c.ListenAddr = getenv("LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.ExportDriver = getenv("EXPORT_DRIVER", c.ExportDriver)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	errs = multierr.Append(errs, envInt("SHARDS", &c.Shards))
	errs = multierr.Append(errs, envInt("MAX_CPU", &c.MaxCPU))
	errs = multierr.Append(errs, envInt64("MAX_BODY_BYTES", &c.MaxBodyBytes))
	errs = multierr.Append(errs, envDuration("SHUTDOWN_WAIT", &c.ShutdownWait))
	errs = multierr.Append(errs, envDuration("EXPORT_EVERY", &c.ExportEvery))
	errs = multierr.Append(errs, c.validate())
	if errs != nil {
		return nil, errs
	}
	return &c, nil
}

func (c *Config) validate() error {
	var errs error
	if c.Shards <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("SHARDS must be > 0"))
	}
	if c.MaxCPU < 0 {
		errs = multierr.Append(errs, fmt.Errorf("MAX_CPU must be >= 0"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("MAX_BODY_BYTES must be > 0"))
	}
	if c.ShutdownWait <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("SHUTDOWN_WAIT must be > 0"))
	}
	switch c.ExportDriver {
	case DriverNone:
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			errs = multierr.Append(errs, fmt.Errorf("DATABASE_URL is required when EXPORT_DRIVER=%s", c.ExportDriver))
		}
		if c.ExportEvery <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("EXPORT_EVERY must be > 0"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("EXPORT_DRIVER must be one of %q, %q, %q; got %q",
			DriverNone, DriverPostgres, DriverSQLite, c.ExportDriver))
	}
	return errs
}

func loadFile(path string, c *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, dst *int) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	*dst = n
	return nil
}

func envInt64(k string, dst *int64) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	*dst = n
	return nil
}

func envDuration(k string, dst *time.Duration) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	*dst = d
	return nil
}
