// Package config loads tieintrack settings from an optional YAML file and
// TIEINTRACK_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tieintrack/internal/blob"
)

// Storage drivers accepted in Storage.Driver and Storage.Fallback.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverDocument = "document"
	DriverNone     = "none"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "tieintrack.yaml"

// Config is the full runtime configuration.
type Config struct {
	Storage Storage     `yaml:"storage"`
	Blob    blob.Config `yaml:"blob"`
	Log     Log         `yaml:"log"`
}

// Storage selects the primary and fallback project stores.
type Storage struct {
	Driver       string        `yaml:"driver"`
	SQLitePath   string        `yaml:"sqlite_path"`
	PostgresDSN  string        `yaml:"postgres_dsn"`
	DocumentKey  string        `yaml:"document_key"`
	Fallback     string        `yaml:"fallback"`
	SaveDebounce time.Duration `yaml:"save_debounce"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration: a local SQLite primary with a
// document fallback in a local blob directory.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Driver:       DriverSQLite,
			SQLitePath:   "tieintrack.db",
			Fallback:     DriverDocument,
			SaveDebounce: 500 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		},
		Blob: blob.Config{Driver: string(blob.DriverFilesystem), FSRoot: "./tieintrack-data"},
		Log:  Log{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects unknown drivers and negative durations.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory, DriverDocument:
	default:
		return fmt.Errorf("invalid storage driver %q (valid: sqlite, postgres, memory, document)", c.Storage.Driver)
	}
	switch c.Storage.Fallback {
	case "", DriverNone, DriverMemory, DriverDocument:
	default:
		return fmt.Errorf("invalid fallback driver %q (valid: none, memory, document)", c.Storage.Fallback)
	}
	if c.Storage.Fallback == c.Storage.Driver {
		return fmt.Errorf("fallback driver must differ from primary %q", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case "", blob.DriverFilesystem, blob.DriverS3, blob.DriverMemory:
	default:
		return fmt.Errorf("invalid blob driver %q (valid: fs, s3, memory)", c.Blob.Driver)
	}
	if c.Storage.SaveDebounce < 0 || c.Storage.WriteTimeout < 0 {
		return fmt.Errorf("storage durations must not be negative")
	}
	return nil
}

// applyEnvOverrides applies TIEINTRACK_* environment variables.
func (c *Config) applyEnvOverrides() error {
	setString := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	setString("TIEINTRACK_STORAGE_DRIVER", &c.Storage.Driver)
	setString("TIEINTRACK_SQLITE_PATH", &c.Storage.SQLitePath)
	setString("TIEINTRACK_POSTGRES_DSN", &c.Storage.PostgresDSN)
	setString("TIEINTRACK_DOCUMENT_KEY", &c.Storage.DocumentKey)
	setString("TIEINTRACK_FALLBACK_DRIVER", &c.Storage.Fallback)
	setString("TIEINTRACK_BLOB_DRIVER", &c.Blob.Driver)
	setString("TIEINTRACK_BLOB_FS_ROOT", &c.Blob.FSRoot)
	setString("TIEINTRACK_BLOB_S3_REGION", &c.Blob.S3.Region)
	setString("TIEINTRACK_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	setString("TIEINTRACK_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	setString("TIEINTRACK_BLOB_S3_ACCESS_KEY_ID", &c.Blob.S3.AccessKeyID)
	setString("TIEINTRACK_BLOB_S3_SECRET_ACCESS_KEY", &c.Blob.S3.SecretAccessKey)
	setString("TIEINTRACK_BLOB_S3_SESSION_TOKEN", &c.Blob.S3.SessionToken)
	setString("TIEINTRACK_LOG_LEVEL", &c.Log.Level)
	setString("TIEINTRACK_LOG_FORMAT", &c.Log.Format)

	if v := strings.TrimSpace(os.Getenv("TIEINTRACK_BLOB_S3_PATH_STYLE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TIEINTRACK_BLOB_S3_PATH_STYLE: %w", err)
		}
		c.Blob.S3.PathStyle = b
	}
	if v := strings.TrimSpace(os.Getenv("TIEINTRACK_SAVE_DEBOUNCE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TIEINTRACK_SAVE_DEBOUNCE: %w", err)
		}
		c.Storage.SaveDebounce = d
	}
	return nil
}
