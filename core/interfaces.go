package core

import (
	"context"
	"io"
	"time"
)

// Transform is the fundamental filter building block.  Apply borrows buf
// read-only and returns a freshly allocated output buffer; implementations
// must never mutate or alias their input.
type Transform interface {
	Name() string
	Apply(ctx context.Context, buf *PixelBuffer) (*PixelBuffer, error)
}

// Decoder converts raw bytes / a reader into a PixelBuffer.
// Implementations live in adapters/decoder/.
type Decoder interface {
	// Decode reads from r and returns the decoded RGB buffer with source
	// metadata.
	Decode(ctx context.Context, r io.Reader) (*PixelBuffer, Metadata, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format Format) bool
}

// Encoder serialises a PixelBuffer to bytes in a target format.
// Implementations live in adapters/encoder/.
type Encoder interface {
	Encode(ctx context.Context, buf *PixelBuffer, opts EncodeOptions) ([]byte, error)
	CanEncode(format Format) bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality    int  // 1-100; 0 = use encoder default
	Lossless   bool // WebP / PNG lossless mode
	Interlaced bool // progressive JPEG / interlaced PNG
}

// Rotator resamples a buffer rotated by the given angle in degrees
// (counter-clockwise, arbitrary magnitude).  Bounding-box expansion and
// interpolation policy belong to the implementation, not the core.
type Rotator interface {
	Rotate(ctx context.Context, buf *PixelBuffer, angleDegrees float64) (*PixelBuffer, error)
}

// ParamSource supplies already-typed scalar parameters for parameterized
// filters.  The core never parses free text; the presentation layer owns
// prompting and conversion.
type ParamSource interface {
	Int(name string) (int, error)
	Float(name string) (float64, error)
}

// BuildFunc constructs a Transform, pulling any required parameters from
// params.  Parameter-free filters ignore the argument.
type BuildFunc func(params ParamSource) (Transform, error)

// StorageAdapter persists exported images and retrieves them later.
// Implementations live in adapters/storage/.
type StorageAdapter interface {
	Put(ctx context.Context, key StorageKey, r io.Reader, meta map[string]string) error
	Get(ctx context.Context, key StorageKey) (io.ReadCloser, error)
	Delete(ctx context.Context, key StorageKey) error
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// StorageKey uniquely identifies a stored image.
type StorageKey struct {
	Bucket string
	Path   string
}

// MetricsCollector receives performance observations from the editor.
type MetricsCollector interface {
	RecordProcessingTime(transformName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordMemory(bytes int64)
	RecordError(transformName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Hook is an optional observer invoked around editor transforms.
type Hook interface {
	BeforeTransform(ctx context.Context, name string, buf *PixelBuffer)
	AfterTransform(ctx context.Context, name string, buf *PixelBuffer, d time.Duration, err error)
}

// CodecRegistry maps Format values to Decoder/Encoder implementations.
type CodecRegistry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
}
