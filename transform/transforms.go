package transform

import (
	"context"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
	"github.com/rasterlab/filterkit/utils"
)

// ── Grayscale ─────────────────────────────────────────────────────────────────

// Luma weights approximating perceived brightness from RGB.
const (
	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140
)

// GrayscaleTransform converts each pixel to its luma value, replicated
// across all three channels.  The weighted sum is rounded, which keeps the
// operation idempotent: a gray pixel maps back to itself.
type GrayscaleTransform struct{}

func (t *GrayscaleTransform) Name() string { return "grayscale" }

func (t *GrayscaleTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}

	out := core.NewPixelBuffer(buf.Width, buf.Height)
	for i := 0; i < len(buf.Pix); i += 3 {
		gray := uint8(math.Round(
			lumaR*float64(buf.Pix[i]) +
				lumaG*float64(buf.Pix[i+1]) +
				lumaB*float64(buf.Pix[i+2])))
		out.Pix[i] = gray
		out.Pix[i+1] = gray
		out.Pix[i+2] = gray
	}
	return out, nil
}

// ── Invert ────────────────────────────────────────────────────────────────────

// InvertTransform flips every sample to 255−x.  Applying it twice restores
// the original exactly.
type InvertTransform struct{}

func (t *InvertTransform) Name() string { return "inversion" }

func (t *InvertTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}

	out := core.NewPixelBuffer(buf.Width, buf.Height)
	for i, v := range buf.Pix {
		out.Pix[i] = 255 - v
	}
	return out, nil
}

// ── Blur ──────────────────────────────────────────────────────────────────────

// BlurTransform convolves the buffer with an injectable kernel.  The padding
// policy travels with the kernel choice: the box variant replicates edges,
// the Gaussian variant zero-fills.
type BlurTransform struct {
	Kernel  Kernel
	Padding Padding
	Workers int
}

func (t *BlurTransform) Name() string { return "blur" }

func (t *BlurTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}
	return Convolve(buf, t.Kernel, t.Padding, t.Workers)
}

// BoxBlur returns the classic 3×3 box blur with edge replication.
func BoxBlur(workers int) *BlurTransform {
	return &BlurTransform{Kernel: BoxKernel3(), Padding: PadEdge, Workers: workers}
}

// GaussianBlur returns the 3×3 Gaussian blur with zero padding.
func GaussianBlur(workers int) *BlurTransform {
	return &BlurTransform{Kernel: GaussianKernel3(), Padding: PadZero, Workers: workers}
}

// ── Sharpen ───────────────────────────────────────────────────────────────────

// SharpenTransform applies a mild sharpening kernel via the engine.
type SharpenTransform struct {
	Workers int
}

func (t *SharpenTransform) Name() string { return "sharpen" }

func (t *SharpenTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}
	return Convolve(buf, SharpenKernel(), PadEdge, t.Workers)
}

// ── Crop ──────────────────────────────────────────────────────────────────────

// CropTransform extracts the sub-rectangle [Top:Bottom, Left:Right] in pixel
// coordinates.  Out-of-bounds or degenerate rectangles report
// ErrInvalidRegion and leave the caller's state untouched.
type CropTransform struct {
	Left, Top, Right, Bottom int
}

func (t *CropTransform) Name() string { return "crop" }

func (t *CropTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}

	if t.Left < 0 || t.Top < 0 || t.Right > buf.Width || t.Bottom > buf.Height ||
		t.Left >= t.Right || t.Top >= t.Bottom {
		return nil, apperrors.New(apperrors.CategoryTransform, t.Name(),
			fmt.Errorf("%w: left=%d top=%d right=%d bottom=%d in %dx%d",
				apperrors.ErrInvalidRegion, t.Left, t.Top, t.Right, t.Bottom, buf.Width, buf.Height))
	}

	w, h := t.Right-t.Left, t.Bottom-t.Top
	out := core.NewPixelBuffer(w, h)
	ch := buf.Channels
	for y := 0; y < h; y++ {
		srcOff := ((t.Top+y)*buf.Width + t.Left) * ch
		dstOff := y * w * ch
		copy(out.Pix[dstOff:dstOff+w*ch], buf.Pix[srcOff:srcOff+w*ch])
	}
	return out, nil
}

// ── Rotate ────────────────────────────────────────────────────────────────────

// RotateTransform rotates by an arbitrary signed angle in degrees.  Pixel
// resampling is delegated to the Rotator collaborator; the transform's own
// contract is only to adopt the resampled result.  Any float angle is
// accepted.
type RotateTransform struct {
	Angle   float64
	Rotator core.Rotator
}

func (t *RotateTransform) Name() string { return "rotate" }

func (t *RotateTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}
	if t.Rotator == nil {
		return nil, apperrors.New(apperrors.CategoryTransform, t.Name(),
			fmt.Errorf("no rotator configured"))
	}
	return t.Rotator.Rotate(ctx, buf, t.Angle)
}

// ── Resize ────────────────────────────────────────────────────────────────────

// ResizeTransform rescales to the given dimensions, preserving aspect ratio
// when one axis is 0.
type ResizeTransform struct {
	Width, Height int
	// Resampler controls quality vs speed.  Defaults to xdraw.BiLinear.
	Resampler xdraw.Interpolator
}

func (t *ResizeTransform) Name() string { return "resize" }

func (t *ResizeTransform) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
	}

	dstW, dstH := utils.ScaleDimensions(buf.Width, buf.Height, t.Width, t.Height)
	if dstW <= 0 || dstH <= 0 {
		return nil, apperrors.New(apperrors.CategoryTransform, t.Name(), apperrors.ErrInvalidDimensions)
	}
	if dstW == buf.Width && dstH == buf.Height {
		return buf.Clone(), nil
	}

	sampler := t.Resampler
	if sampler == nil {
		sampler = xdraw.BiLinear
	}

	src := buf.ToImage()
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	sampler.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return core.FromImage(dst), nil
}

// ── Chain ─────────────────────────────────────────────────────────────────────

// Chain applies a fixed sequence of transforms as one unit.  Used to expose
// presets: the editor records a single undo snapshot for the whole chain.
type Chain struct {
	ChainName  string
	Transforms []core.Transform
}

// NewChain builds a named chain.
func NewChain(name string, ts ...core.Transform) *Chain {
	return &Chain{ChainName: name, Transforms: ts}
}

func (t *Chain) Name() string { return t.ChainName }

func (t *Chain) Apply(ctx context.Context, buf *core.PixelBuffer) (*core.PixelBuffer, error) {
	current := buf
	for _, step := range t.Transforms {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryTransform, step.Name(), err)
		}
		next, err := step.Apply(ctx, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	if current == buf {
		// Empty chain: still honour the no-aliasing contract.
		return buf.Clone(), nil
	}
	return current, nil
}

// Compile-time interface checks.
var (
	_ core.Transform = (*GrayscaleTransform)(nil)
	_ core.Transform = (*InvertTransform)(nil)
	_ core.Transform = (*BlurTransform)(nil)
	_ core.Transform = (*SharpenTransform)(nil)
	_ core.Transform = (*CropTransform)(nil)
	_ core.Transform = (*RotateTransform)(nil)
	_ core.Transform = (*ResizeTransform)(nil)
	_ core.Transform = (*Chain)(nil)
)
