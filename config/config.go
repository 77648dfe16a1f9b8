package config

import (
	"errors"
)

// StorageBackend selects the storage adapter.
type StorageBackend string

const (
	StorageLocal StorageBackend = "local"
	StorageS3    StorageBackend = "s3"
)

// Config is the top-level configuration struct.  All fields have safe
// defaults so callers can start with Config{} and override only what they
// need.
type Config struct {
	// Convolution fan-out.  0 resolves to runtime.NumCPU() inside the engine.
	WorkerCount int

	// Undo snapshots retained; 0 keeps every snapshot.
	HistoryLimit int

	// Default encode quality applied when an export does not override.
	DefaultQuality int // 1-100; default 85

	// Streaming / memory limits for Load.
	MaxImageBytes int64 // 0 = no limit
	ChunkSize     int   // streaming chunk size in bytes; default 32 KiB

	// Storage.
	Storage StorageBackend
	Local   LocalConfig
	S3      S3Config

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// LocalConfig configures the local filesystem storage adapter.
type LocalConfig struct {
	RootDir     string
	Permissions uint32 // default 0644
}

// S3Config configures the S3-compatible storage adapter.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional custom endpoint (MinIO, etc.)
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		WorkerCount:    0, // resolved at runtime to NumCPU
		HistoryLimit:   0, // unbounded
		DefaultQuality: 85,
		ChunkSize:      32 * 1024,
		Storage:        StorageLocal,
		LogLevel:       "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.HistoryLimit < 0 {
		return errors.New("config: HistoryLimit must not be negative")
	}
	if c.WorkerCount < 0 {
		return errors.New("config: WorkerCount must not be negative")
	}
	return nil
}
