// Package resample provides geometry collaborators built on
// github.com/disintegration/imaging.
package resample

import (
	"context"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
)

// ImagingRotator resamples rotations through the imaging library.  The
// output bounding box expands to contain the whole rotated image; uncovered
// corners are filled with Background.
type ImagingRotator struct {
	// Background fills the corners exposed by non-right-angle rotations.
	// Defaults to black.
	Background color.Color
}

// NewRotator returns a rotator with a black background fill.
func NewRotator() *ImagingRotator {
	return &ImagingRotator{Background: color.NRGBA{A: 0xFF}}
}

func (r *ImagingRotator) Rotate(ctx context.Context, buf *core.PixelBuffer, angleDegrees float64) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, "resample.rotate", err)
	}
	if buf == nil {
		return nil, apperrors.New(apperrors.CategoryTransform, "resample.rotate", apperrors.ErrEmptyInput)
	}

	bg := r.Background
	if bg == nil {
		bg = color.NRGBA{A: 0xFF}
	}

	rotated := imaging.Rotate(buf.ToImage(), angleDegrees, bg)
	return core.FromImage(rotated), nil
}

var _ core.Rotator = (*ImagingRotator)(nil)
