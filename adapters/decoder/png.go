package decoder

import (
	"context"
	"image/png"
	"io"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
)

// PNG decodes PNG images using the standard library.
type PNG struct{}

// NewPNG returns an initialised PNG decoder.
func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format core.Format) bool {
	return format == core.FormatPNG
}

func (p *PNG) Decode(ctx context.Context, r io.Reader) (*core.PixelBuffer, core.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}

	img, err := png.Decode(r)
	if err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}

	buf := core.FromImage(img)
	meta := core.Metadata{
		Width:    buf.Width,
		Height:   buf.Height,
		Format:   core.FormatPNG,
		HasAlpha: hasAlpha(img),
	}
	return buf, meta, nil
}
