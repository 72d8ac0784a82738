// Package blob selects the artifact store used for exports and re-exports
// its contract for callers outside the storage tree.
package blob

import (
	"context"
	"fmt"
	"os"

	"immunizetrack/internal/blob/core"
	"immunizetrack/internal/infra/blob/fs"
	"immunizetrack/internal/infra/blob/memory"
	"immunizetrack/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures download URLs.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
	// S3Config configures the s3 driver.
	S3Config = s3.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported = core.ErrUnsupported
	ErrNotFound    = core.ErrNotFound
	ErrExists      = core.ErrExists
)

// Config selects and parameterises a blob store.
type Config struct {
	Driver Driver   `yaml:"driver"`
	FSRoot string   `yaml:"fsRoot"`
	S3     S3Config `yaml:"s3"`
}

// ConfigFromEnv reads the blob environment variables.
//
//	IMMUNIZETRACK_BLOB_DRIVER: fs|s3|memory (default fs)
//	IMMUNIZETRACK_BLOB_FS_ROOT: directory when driver=fs (default ./exports)
//	(s3 variables documented on s3.ConfigFromEnv)
func ConfigFromEnv() Config {
	return Config{
		Driver: Driver(os.Getenv("IMMUNIZETRACK_BLOB_DRIVER")),
		FSRoot: os.Getenv("IMMUNIZETRACK_BLOB_FS_ROOT"),
		S3:     s3.ConfigFromEnv(),
	}
}

// Open builds the store named by cfg.Driver, defaulting to fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		store, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an in-memory store for tests.
func NewMemory() Store { return memory.New() }
