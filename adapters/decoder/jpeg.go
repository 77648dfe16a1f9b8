// Package decoder provides format-specific image decoders.
package decoder

import (
	"context"
	"image"
	"image/jpeg"
	"io"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
)

// JPEG decodes JPEG images using the standard library.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool {
	return format == core.FormatJPEG || format == core.FormatUnknown
}

func (j *JPEG) Decode(ctx context.Context, r io.Reader) (*core.PixelBuffer, core.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}

	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, core.Metadata{}, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}

	buf := core.FromImage(img)
	meta := core.Metadata{
		Width:    buf.Width,
		Height:   buf.Height,
		Format:   core.FormatJPEG,
		HasAlpha: hasAlpha(img),
	}
	return buf, meta, nil
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}
