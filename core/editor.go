package core

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rasterlab/filterkit/config"
	apperrors "github.com/rasterlab/filterkit/errors"
	"github.com/rasterlab/filterkit/utils"
)

// Editor is the central orchestrator of one editing session.  It owns the
// current PixelBuffer, the undo history, and the filter/codec registries.
//
// A session is single-owner: all mutation happens on the caller's goroutine
// and no locking guards the buffer slot.  The transforms themselves are pure
// and may parallelise internally.
type Editor struct {
	cfg     config.Config
	codecs  CodecRegistry
	filters *FilterRegistry
	catalog *Catalog
	hooks   []Hook
	logger  Logger
	metrics MetricsCollector

	buffer  *PixelBuffer
	meta    Metadata
	history *History

	// Atomic counters for lightweight internal stats.
	appliedCount int64
	errorCount   int64
}

// NewEditor creates an Editor with the given config and registries.
func NewEditor(cfg config.Config, codecs CodecRegistry, filters *FilterRegistry, catalog *Catalog) *Editor {
	return &Editor{
		cfg:     cfg,
		codecs:  codecs,
		filters: filters,
		catalog: catalog,
		history: NewHistory(cfg.HistoryLimit),
	}
}

// SetLogger attaches a structured logger.
func (e *Editor) SetLogger(l Logger) { e.logger = l }

// SetMetrics attaches a metrics collector.
func (e *Editor) SetMetrics(m MetricsCollector) { e.metrics = m }

// AddHook registers a transform observer.
func (e *Editor) AddHook(h Hook) { e.hooks = append(e.hooks, h) }

// Codecs returns the codec registry so callers can register encoders and
// decoders after construction.
func (e *Editor) Codecs() CodecRegistry { return e.codecs }

// Filters returns the filter registry.
func (e *Editor) Filters() *FilterRegistry { return e.filters }

// Catalog returns the menu catalog.
func (e *Editor) Catalog() *Catalog { return e.catalog }

// Buffer returns the live pixel buffer, or nil before Load.
func (e *Editor) Buffer() *PixelBuffer { return e.buffer }

// Meta returns the metadata captured when the current image was loaded.
func (e *Editor) Meta() Metadata { return e.meta }

// HistoryDepth reports the number of undoable snapshots.
func (e *Editor) HistoryDepth() int { return e.history.Len() }

// SetBuffer installs buf as the session image without touching the history.
// Intended for programmatic sources that bypass the codec layer.
func (e *Editor) SetBuffer(buf *PixelBuffer) {
	e.buffer = buf
	if buf != nil {
		e.meta.Width = buf.Width
		e.meta.Height = buf.Height
	}
}

// Load reads an encoded image from r, sniffs its format, decodes it through
// the codec registry, and installs it as the session image.  The undo
// history is reset: snapshots of a previous image cannot be replayed onto a
// new one.
func (e *Editor) Load(ctx context.Context, r io.Reader) error {
	var limited = r
	if e.cfg.MaxImageBytes > 0 {
		limited = &utils.LimitedReader{R: r, Max: e.cfg.MaxImageBytes}
	}

	buf, err := utils.DrainReader(ctx, limited, e.cfg.ChunkSize)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryDecode, "load.drain", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	if len(raw) == 0 {
		return apperrors.New(apperrors.CategoryDecode, "load", apperrors.ErrEmptyInput)
	}

	format := Format(utils.DetectFormat(raw))
	dec, ok := e.codecs.DecoderFor(format)
	if !ok {
		return apperrors.New(apperrors.CategoryDecode, "load",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}

	pix, meta, err := dec.Decode(ctx, utils.BytesReader(raw))
	if err != nil {
		return err
	}
	meta.SizeBytes = int64(len(raw))

	e.buffer = pix
	e.meta = meta
	e.history = NewHistory(e.cfg.HistoryLimit)

	if e.logger != nil {
		e.logger.Info("editor.load",
			"format", meta.Format, "width", meta.Width, "height", meta.Height)
	}
	return nil
}

// Apply runs t against the current buffer.  On success the pre-image is
// pushed onto the undo history and the result installed; on failure buffer
// and history are left untouched and the error reported to the caller.
func (e *Editor) Apply(ctx context.Context, t Transform) error {
	if e.buffer == nil {
		return apperrors.New(apperrors.CategoryTransform, t.Name(), apperrors.ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}

	e.notifyBefore(ctx, t.Name(), e.buffer)
	start := time.Now()
	result, err := t.Apply(ctx, e.buffer)
	elapsed := time.Since(start)
	e.notifyAfter(ctx, t.Name(), result, elapsed, err)

	if err != nil {
		atomic.AddInt64(&e.errorCount, 1)
		if e.logger != nil {
			e.logger.Warn("editor.apply.failed", "transform", t.Name(), "error", err.Error())
		}
		return err
	}

	e.history.Push(e.buffer)
	e.buffer = result
	e.meta.Width = result.Width
	e.meta.Height = result.Height
	atomic.AddInt64(&e.appliedCount, 1)
	return nil
}

// ApplyNamed resolves name through the filter registry, builds the transform
// with params, and applies it.
func (e *Editor) ApplyNamed(ctx context.Context, name string, params ParamSource) error {
	build, ok := e.filters.Lookup(name)
	if !ok {
		return apperrors.New(apperrors.CategoryCatalog, "apply",
			fmt.Errorf("%w: %q", apperrors.ErrUnknownFilter, name))
	}
	t, err := build(params)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryInput, name, err)
	}
	return e.Apply(ctx, t)
}

// Undo replaces the current buffer with the most recent snapshot.  With an
// empty history it reports ErrEmptyHistory and changes nothing.
func (e *Editor) Undo() error {
	prev, ok := e.history.Pop()
	if !ok {
		return apperrors.New(apperrors.CategoryHistory, "undo", apperrors.ErrEmptyHistory)
	}
	e.buffer = prev
	e.meta.Width = prev.Width
	e.meta.Height = prev.Height
	if e.logger != nil {
		e.logger.Debug("editor.undo", "depth", e.history.Len())
	}
	return nil
}

// Export encodes the current buffer in the given format and writes it to w.
func (e *Editor) Export(ctx context.Context, w io.Writer, format Format, opts EncodeOptions) error {
	if e.buffer == nil {
		return apperrors.New(apperrors.CategoryEncode, "export", apperrors.ErrEmptyInput)
	}
	enc, ok := e.codecs.EncoderFor(format)
	if !ok {
		return apperrors.New(apperrors.CategoryEncode, "export",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}
	if opts.Quality <= 0 {
		opts.Quality = e.cfg.DefaultQuality
	}

	data, err := enc.Encode(ctx, e.buffer, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return apperrors.Wrap(apperrors.CategoryEncode, "export.write", err)
	}
	if e.metrics != nil {
		e.metrics.RecordThroughput(int64(len(data)))
	}
	return nil
}

// Stats returns the count of applied transforms and failed applications.
func (e *Editor) Stats() (applied, errors int64) {
	return atomic.LoadInt64(&e.appliedCount), atomic.LoadInt64(&e.errorCount)
}

func (e *Editor) notifyBefore(ctx context.Context, name string, buf *PixelBuffer) {
	for _, h := range e.hooks {
		h.BeforeTransform(ctx, name, buf)
	}
}

func (e *Editor) notifyAfter(ctx context.Context, name string, buf *PixelBuffer, d time.Duration, err error) {
	for _, h := range e.hooks {
		h.AfterTransform(ctx, name, buf, d, err)
	}
	if e.metrics != nil {
		e.metrics.RecordProcessingTime(name, d)
		if err != nil {
			e.metrics.RecordError(name, "transform")
		}
	}
}
