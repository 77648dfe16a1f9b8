// Package vips provides an optional libvips-powered codec backend.
package vips

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
	"github.com/rasterlab/filterkit/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	DefaultQuality int
	MaxCacheSize   int
	MaxWorkers     int
	ReportLeaks    bool
}

// Backend is a unified libvips-powered Decoder and Encoder.
// Safe for concurrent use across goroutines.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 85
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
		CollectStats:     true,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources.  Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

func (b *Backend) CanDecode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatUnknown:
		return true
	}
	return false
}

func (b *Backend) Decode(ctx context.Context, r io.Reader) (*core.PixelBuffer, core.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode", err)
	}

	buf, err := utils.DrainReader(ctx, r, 32*1024)
	if err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.drain", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	ref, err := govips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode", err)
	}
	defer ref.Close()

	format := vipsFormatToCore(ref.Format())
	meta := core.Metadata{
		Width:       ref.Width(),
		Height:      ref.Height(),
		Format:      format,
		HasAlpha:    ref.HasAlpha(),
		SizeBytes:   int64(len(raw)),
		Orientation: ref.Orientation(),
	}
	fields := ref.GetFields()
	if len(fields) > 0 {
		exif := make(map[string]string, len(fields))
		for _, field := range fields {
			exif[field] = ref.GetString(field)
		}
		if len(exif) > 0 {
			meta.EXIF = exif
			meta.HasEXIF = true
		}
	}

	pix, err := refToBuffer(ref)
	if err != nil {
		return nil, core.Metadata{}, err
	}
	return pix, meta, nil
}

// refToBuffer extracts raw RGB samples from a decoded vips image.  Alpha is
// flattened over black; non-RGB band layouts go through a PNG round-trip.
func refToBuffer(ref *govips.ImageRef) (*core.PixelBuffer, error) {
	if ref.HasAlpha() {
		if err := ref.Flatten(&govips.Color{}); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.flatten", err)
		}
	}

	if ref.Bands() == core.Channels {
		raw, err := ref.ToBytes()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.bytes", err)
		}
		pix := core.NewPixelBuffer(ref.Width(), ref.Height())
		if len(raw) != len(pix.Pix) {
			return nil, apperrors.New(apperrors.CategoryDecode, "vips.decode.bytes",
				apperrors.ErrInvalidDimensions)
		}
		copy(pix.Pix, raw)
		return pix, nil
	}

	// Grayscale, CMYK, etc.: let the stdlib normalise the band layout.
	data, _, err := ref.ExportPng(govips.NewPngExportParams())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.export", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.reparse", err)
	}
	return core.FromImage(img), nil
}

// ─── Encoder ──────────────────────────────────────────────────────────────────

func (b *Backend) CanEncode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP:
		return true
	}
	return false
}

func (b *Backend) encodeAs(ctx context.Context, buf *core.PixelBuffer, format core.Format, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode", err)
	}
	if buf == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "vips.encode", apperrors.ErrEmptyInput)
	}

	// libvips imports encoded bytes, so bridge the raw buffer through a
	// lossless PNG before handing it over.
	var bridge bytes.Buffer
	if err := png.Encode(&bridge, buf.ToImage()); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.bridge", err)
	}
	ref, err := govips.NewImageFromBuffer(bridge.Bytes())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.import", err)
	}
	defer ref.Close()

	quality := opts.Quality
	if quality <= 0 {
		quality = b.cfg.DefaultQuality
	}

	switch format {
	case core.FormatJPEG:
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		ep.Interlace = opts.Interlaced
		out, _, err := ref.ExportJpeg(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.jpeg", err)
		}
		return out, nil

	case core.FormatPNG:
		ep := govips.NewPngExportParams()
		ep.Interlace = opts.Interlaced
		out, _, err := ref.ExportPng(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.png", err)
		}
		return out, nil

	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		ep.Lossless = opts.Lossless
		out, _, err := ref.ExportWebp(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.webp", err)
		}
		return out, nil

	default:
		return nil, apperrors.New(apperrors.CategoryEncode, "vips.encode",
			apperrors.ErrUnsupportedFormat)
	}
}

// formatEncoder binds the shared backend to a single target format so it can
// sit in the codec registry.
type formatEncoder struct {
	backend *Backend
	format  core.Format
}

func (e *formatEncoder) CanEncode(f core.Format) bool { return f == e.format }

func (e *formatEncoder) Encode(ctx context.Context, buf *core.PixelBuffer, opts core.EncodeOptions) ([]byte, error) {
	return e.backend.encodeAs(ctx, buf, e.format, opts)
}

// RegisterBackend replaces the Go stdlib codecs with libvips for all formats.
func RegisterBackend(reg core.CodecRegistry, b *Backend) {
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP} {
		reg.RegisterDecoder(f, b)
		reg.RegisterEncoder(f, &formatEncoder{backend: b, format: f})
	}
}

func vipsFormatToCore(f govips.ImageType) core.Format {
	switch f {
	case govips.ImageTypeJPEG:
		return core.FormatJPEG
	case govips.ImageTypePNG:
		return core.FormatPNG
	case govips.ImageTypeWEBP:
		return core.FormatWebP
	default:
		return core.FormatUnknown
	}
}

// compile-time interface checks
var (
	_ core.Decoder = (*Backend)(nil)
	_ core.Encoder = (*formatEncoder)(nil)
)
