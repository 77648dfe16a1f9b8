package decoder

import (
	"context"
	"io"

	"golang.org/x/image/webp"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
)

// WebP decodes WebP images using golang.org/x/image/webp.
// NOTE: golang.org/x/image/webp only supports lossy WebP decoding.
// For lossless or animated WebP, register the libvips backend instead.
type WebP struct{}

// NewWebP returns an initialised WebP decoder.
func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanDecode(format core.Format) bool {
	return format == core.FormatWebP
}

func (w *WebP) Decode(ctx context.Context, r io.Reader) (*core.PixelBuffer, core.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "webp.decode", err)
	}

	img, err := webp.Decode(r)
	if err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "webp.decode", err)
	}

	buf := core.FromImage(img)
	meta := core.Metadata{
		Width:    buf.Width,
		Height:   buf.Height,
		Format:   core.FormatWebP,
		HasAlpha: hasAlpha(img),
	}
	return buf, meta, nil
}
