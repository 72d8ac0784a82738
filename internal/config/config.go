// Package config loads process configuration: built-in defaults, then an
// optional YAML file, then IMMUNIZETRACK_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"immunizetrack/internal/blob"
	"immunizetrack/internal/core"
	"immunizetrack/internal/logging"
	"immunizetrack/internal/presentation"
)

// EnvFile names the environment variable holding the config file path.
const EnvFile = "IMMUNIZETRACK_CONFIG"

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Config is the full process configuration.
type Config struct {
	Storage            core.StorageConfig                       `yaml:"storage"`
	Blob               blob.Config                              `yaml:"blob"`
	HTTP               HTTPConfig                               `yaml:"http"`
	Log                logging.Config                           `yaml:"log"`
	FilterCacheSize    int                                      `yaml:"filterCacheSize"`
	SeedFile           string                                   `yaml:"seedFile"`
	StrictPresentation bool                                     `yaml:"strictPresentation"`
	Presentation       map[string]map[string]presentation.Style `yaml:"presentation"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage:         core.StorageConfig{Driver: core.StorageSQLite},
		Blob:            blob.Config{Driver: blob.DriverFilesystem},
		HTTP:            HTTPConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Log:             logging.Config{Level: "info"},
		FilterCacheSize: 128,
	}
}

// Load reads path (when non-empty, else $IMMUNIZETRACK_CONFIG when set) over
// the defaults and applies the environment on top.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(bytes.NewReader(raw), &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Decode reads YAML from r over the defaults without consulting the
// environment.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := decode(r, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var driver, blobDriver string
	str("IMMUNIZETRACK_STORAGE_DRIVER", &driver)
	if driver != "" {
		c.Storage.Driver = core.StorageDriver(driver)
	}
	str("IMMUNIZETRACK_SQLITE_PATH", &c.Storage.SQLitePath)
	str("IMMUNIZETRACK_POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("IMMUNIZETRACK_LEVELDB_PATH", &c.Storage.LevelDBPath)

	str("IMMUNIZETRACK_BLOB_DRIVER", &blobDriver)
	if blobDriver != "" {
		c.Blob.Driver = blob.Driver(blobDriver)
	}
	str("IMMUNIZETRACK_BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("IMMUNIZETRACK_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("IMMUNIZETRACK_BLOB_S3_REGION", &c.Blob.S3.Region)
	str("IMMUNIZETRACK_BLOB_S3_PREFIX", &c.Blob.S3.Prefix)
	str("IMMUNIZETRACK_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	str("AWS_ACCESS_KEY_ID", &c.Blob.S3.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &c.Blob.S3.SecretAccessKey)
	str("AWS_SESSION_TOKEN", &c.Blob.S3.SessionToken)

	str("IMMUNIZETRACK_HTTP_ADDR", &c.HTTP.Addr)
	str("IMMUNIZETRACK_LOG_LEVEL", &c.Log.Level)
	str("IMMUNIZETRACK_SEED_FILE", &c.SeedFile)

	bools := map[string]*bool{
		"IMMUNIZETRACK_BLOB_S3_PATH_STYLE":  &c.Blob.S3.PathStyle,
		"IMMUNIZETRACK_VERBOSE":             &c.Log.Verbose,
		"IMMUNIZETRACK_STRICT_PRESENTATION": &c.StrictPresentation,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	if v, ok := lookup("IMMUNIZETRACK_FILTER_CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMMUNIZETRACK_FILTER_CACHE_SIZE: %w", err)
		}
		c.FilterCacheSize = n
	}
	if v, ok := lookup("IMMUNIZETRACK_HTTP_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IMMUNIZETRACK_HTTP_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.HTTP.ShutdownTimeout = d
	}
	return nil
}

// Validate rejects unknown drivers and negative sizes.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "", core.StorageMemory, core.StorageSQLite, core.StoragePostgres, core.StorageLevelDB:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "", blob.DriverFilesystem, blob.DriverMemory, blob.DriverS3:
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == blob.DriverS3 && strings.TrimSpace(c.Blob.S3.Bucket) == "" {
		return fmt.Errorf("blob driver s3 requires a bucket")
	}
	if c.FilterCacheSize < 0 {
		return fmt.Errorf("filterCacheSize must not be negative")
	}
	return nil
}

// Catalog returns the default presentation catalog with configured overrides.
func (c Config) Catalog() (presentation.Catalog, error) {
	return presentation.Defaults().Override(c.Presentation)
}

// ServiceOptions translates the configuration into service options. The
// persistent store is opened separately so callers own its lifetime.
func (c Config) ServiceOptions() ([]core.Option, error) {
	catalog, err := c.Catalog()
	if err != nil {
		return nil, err
	}
	opts := []core.Option{core.WithPresentation(catalog), core.WithFilterCache(c.FilterCacheSize)}
	if c.StrictPresentation {
		opts = append(opts, core.WithStrictPresentation())
	}
	return opts, nil
}
