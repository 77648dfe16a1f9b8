// Package filterkit is an interactive raster-image filter engine: it loads
// an image into an in-memory pixel buffer, applies named transformations
// resolved through a hierarchical catalog, and supports linear undo.
package filterkit

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rasterlab/filterkit/adapters/decoder"
	"github.com/rasterlab/filterkit/adapters/encoder"
	"github.com/rasterlab/filterkit/adapters/resample"
	"github.com/rasterlab/filterkit/config"
	"github.com/rasterlab/filterkit/core"
	"github.com/rasterlab/filterkit/transform"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
)

// Canonical filter registry keys.
const (
	FilterGrayscale    = "grayscale"
	FilterInversion    = "inversion"
	FilterBlur         = "blur"
	FilterGaussianBlur = "gaussian_blur"
	FilterSharpen      = "sharpen"
	FilterCrop         = "crop"
	FilterRotate       = "rotate"
	FilterResize       = "resize"
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Editor is the primary entry point: one editing session over one image.
type Editor struct {
	inner  *core.Editor
	codecs *core.DefaultCodecRegistry
}

// New creates a fully wired Editor: stdlib JPEG/PNG/WebP codecs, the built-in
// filter set, and the default catalog tree are registered.  Pass a custom
// config.Config to override defaults.
func New(cfg config.Config) *Editor {
	codecs := core.NewCodecRegistry()
	codecs.RegisterDecoder(core.FormatJPEG, decoder.NewJPEG())
	codecs.RegisterDecoder(core.FormatPNG, decoder.NewPNG())
	codecs.RegisterDecoder(core.FormatWebP, decoder.NewWebP())
	codecs.RegisterEncoder(core.FormatJPEG, encoder.NewJPEG(cfg.DefaultQuality))
	codecs.RegisterEncoder(core.FormatPNG, encoder.NewPNG())
	codecs.RegisterEncoder(core.FormatWebP, encoder.NewWebP(cfg.DefaultQuality))

	filters := core.NewFilterRegistry()
	registerBuiltinFilters(filters, cfg, resample.NewRotator())

	inner := core.NewEditor(cfg, codecs, filters, DefaultCatalog())
	return &Editor{inner: inner, codecs: codecs}
}

// registerBuiltinFilters binds the canonical filter names to constructors.
func registerBuiltinFilters(reg *core.FilterRegistry, cfg config.Config, rotator core.Rotator) {
	workers := cfg.WorkerCount

	reg.Register(FilterGrayscale, func(core.ParamSource) (core.Transform, error) {
		return &transform.GrayscaleTransform{}, nil
	})
	reg.Register(FilterInversion, func(core.ParamSource) (core.Transform, error) {
		return &transform.InvertTransform{}, nil
	})
	reg.Register(FilterBlur, func(core.ParamSource) (core.Transform, error) {
		return transform.BoxBlur(workers), nil
	})
	reg.Register(FilterGaussianBlur, func(core.ParamSource) (core.Transform, error) {
		return transform.GaussianBlur(workers), nil
	})
	reg.Register(FilterSharpen, func(core.ParamSource) (core.Transform, error) {
		return &transform.SharpenTransform{Workers: workers}, nil
	})
	reg.Register(FilterCrop, func(p core.ParamSource) (core.Transform, error) {
		t := &transform.CropTransform{}
		var err error
		if t.Left, err = p.Int("left"); err != nil {
			return nil, err
		}
		if t.Top, err = p.Int("top"); err != nil {
			return nil, err
		}
		if t.Right, err = p.Int("right"); err != nil {
			return nil, err
		}
		if t.Bottom, err = p.Int("bottom"); err != nil {
			return nil, err
		}
		return t, nil
	})
	reg.Register(FilterRotate, func(p core.ParamSource) (core.Transform, error) {
		angle, err := p.Float("angle")
		if err != nil {
			return nil, err
		}
		return &transform.RotateTransform{Angle: angle, Rotator: rotator}, nil
	})
	reg.Register(FilterResize, func(p core.ParamSource) (core.Transform, error) {
		t := &transform.ResizeTransform{}
		var err error
		if t.Width, err = p.Int("width"); err != nil {
			return nil, err
		}
		if t.Height, err = p.Int("height"); err != nil {
			return nil, err
		}
		return t, nil
	})
}

// DefaultCatalog builds the static menu tree presented to users.
func DefaultCatalog() *core.Catalog {
	c := core.NewCatalog("Filters")
	c.Add("Filters", "Color Filters", "")
	c.Add("Color Filters", "Grayscale", FilterGrayscale)
	c.Add("Color Filters", "Inversion", FilterInversion)
	c.Add("Filters", "Effects", "")
	c.Add("Effects", "Blur", FilterBlur)
	c.Add("Effects", "Gaussian Blur", FilterGaussianBlur)
	c.Add("Effects", "Sharpen", FilterSharpen)
	c.Add("Filters", "Transformations", "")
	c.Add("Transformations", "Crop", FilterCrop)
	c.Add("Transformations", "Rotate", FilterRotate)
	c.Add("Transformations", "Resize", FilterResize)
	return c
}

// SetLogger attaches a structured logger.
func (e *Editor) SetLogger(l core.Logger) { e.inner.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (e *Editor) SetMetrics(m core.MetricsCollector) { e.inner.SetMetrics(m) }

// AddHook registers an observer for transform events.
func (e *Editor) AddHook(h core.Hook) { e.inner.AddHook(h) }

// RegisterDecoder registers a custom decoder for the given format.
func (e *Editor) RegisterDecoder(f core.Format, d core.Decoder) { e.codecs.RegisterDecoder(f, d) }

// RegisterEncoder registers a custom encoder for the given format.
func (e *Editor) RegisterEncoder(f core.Format, enc core.Encoder) { e.codecs.RegisterEncoder(f, enc) }

// RegisterFilter binds a custom filter name to a transform constructor.
func (e *Editor) RegisterFilter(name string, build core.BuildFunc) {
	e.inner.Filters().Register(name, build)
}

// RegisterPreset binds name to a fixed transform chain applied (and undone)
// as one unit.
func (e *Editor) RegisterPreset(name string, ts ...core.Transform) {
	chain := transform.NewChain(name, ts...)
	e.inner.Filters().Register(name, func(core.ParamSource) (core.Transform, error) {
		return chain, nil
	})
}

// Load reads and decodes an image from r, making it the session image.
func (e *Editor) Load(ctx context.Context, r io.Reader) error { return e.inner.Load(ctx, r) }

// LoadFile opens path and loads it.
func (e *Editor) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return e.inner.Load(ctx, f)
}

// Apply runs a transform against the session image, recording an undo
// snapshot on success.
func (e *Editor) Apply(ctx context.Context, t core.Transform) error { return e.inner.Apply(ctx, t) }

// ApplyNamed resolves a registered filter by name and applies it.  Filters
// that take parameters pull them from params.
func (e *Editor) ApplyNamed(ctx context.Context, name string, params core.ParamSource) error {
	return e.inner.ApplyNamed(ctx, name, params)
}

// Undo restores the buffer state prior to the most recent transform.
func (e *Editor) Undo() error { return e.inner.Undo() }

// Export encodes the session image to w in the given format.
func (e *Editor) Export(ctx context.Context, w io.Writer, f core.Format, opts core.EncodeOptions) error {
	return e.inner.Export(ctx, w, f, opts)
}

// Buffer returns the live pixel buffer, or nil before Load.
func (e *Editor) Buffer() *core.PixelBuffer { return e.inner.Buffer() }

// Meta returns metadata captured at load time (dimensions track transforms).
func (e *Editor) Meta() core.Metadata { return e.inner.Meta() }

// HistoryDepth reports the number of undoable snapshots.
func (e *Editor) HistoryDepth() int { return e.inner.HistoryDepth() }

// Catalog returns the menu tree.
func (e *Editor) Catalog() *core.Catalog { return e.inner.Catalog() }

// Stats returns counts of applied transforms and failed applications.
func (e *Editor) Stats() (applied, errors int64) { return e.inner.Stats() }

// Inner exposes the underlying core.Editor for advanced use (e.g., direct
// buffer installation in tests).  Prefer the high-level API for normal usage.
func (e *Editor) Inner() *core.Editor { return e.inner }

// ── Parameter helpers ─────────────────────────────────────────────────────────

// Params is a static ParamSource backed by maps; convenient for programmatic
// callers and tests.
type Params struct {
	Ints   map[string]int
	Floats map[string]float64
}

func (p Params) Int(name string) (int, error) {
	v, ok := p.Ints[name]
	if !ok {
		return 0, fmt.Errorf("missing int parameter %q", name)
	}
	return v, nil
}

func (p Params) Float(name string) (float64, error) {
	v, ok := p.Floats[name]
	if !ok {
		return 0, fmt.Errorf("missing float parameter %q", name)
	}
	return v, nil
}

var _ core.ParamSource = Params{}
