package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryDecode    Category = "decode"
	CategoryEncode    Category = "encode"
	CategoryTransform Category = "transform"
	CategoryCatalog   Category = "catalog"
	CategoryHistory   Category = "history"
	CategoryStorage   Category = "storage"
	CategoryConfig    Category = "config"
	CategoryTransient Category = "transient"
	CategoryInput     Category = "input"
)

// FilterError is the structured error type used throughout the module.
type FilterError struct {
	Category  Category
	Op        string // operation name
	Err       error
	Retryable bool
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// New creates a non-retryable FilterError.
func New(category Category, op string, err error) *FilterError {
	return &FilterError{Category: category, Op: op, Err: err}
}

// Transient creates a retryable FilterError.
func Transient(op string, err error) *FilterError {
	return &FilterError{Category: CategoryTransient, Op: op, Err: err, Retryable: true}
}

// Wrap wraps an existing error with context.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsRetryable reports whether err represents a transient failure.
func IsRetryable(err error) bool {
	var fe *FilterError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var fe *FilterError
	if errors.As(err, &fe) {
		return fe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.  Each of these is recoverable:
// the session's current buffer and undo history are left untouched.
var (
	ErrInvalidKernel      = errors.New("kernel dimensions must be odd")
	ErrInvalidRegion      = errors.New("invalid crop region")
	ErrEmptyHistory       = errors.New("nothing to undo")
	ErrUnknownFilter      = errors.New("unknown filter")
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrInvalidDimensions  = errors.New("invalid dimensions")
	ErrEmptyInput         = errors.New("empty input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
