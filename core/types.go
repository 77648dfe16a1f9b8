package core

import (
	"image"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// Channels is the fixed sample count per pixel.  The engine works in plain
// RGB; alpha is dropped at the codec boundary.
const Channels = 3

// Metadata holds source image information captured at decode time.
type Metadata struct {
	Width       int
	Height      int
	Format      Format
	HasAlpha    bool
	SizeBytes   int64
	EXIF        map[string]string // nil when stripped or absent
	HasEXIF     bool
	Orientation int // EXIF orientation tag (1-8)
}

// PixelBuffer is the mutable H×W×3 byte grid every transform reads and
// writes.  Invariant: len(Pix) == Height*Width*Channels.
type PixelBuffer struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// NewPixelBuffer allocates a zeroed RGB buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Height:   height,
		Width:    width,
		Channels: Channels,
		Pix:      make([]uint8, height*width*Channels),
	}
}

// Clone returns an independent deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	cp := &PixelBuffer{Height: b.Height, Width: b.Width, Channels: b.Channels}
	cp.Pix = make([]uint8, len(b.Pix))
	copy(cp.Pix, b.Pix)
	return cp
}

// At returns the sample at row y, column x, channel c.
func (b *PixelBuffer) At(y, x, c int) uint8 {
	return b.Pix[(y*b.Width+x)*b.Channels+c]
}

// Set stores the sample at row y, column x, channel c.
func (b *PixelBuffer) Set(y, x, c int, v uint8) {
	b.Pix[(y*b.Width+x)*b.Channels+c] = v
}

// Equal reports byte-for-byte equality of dimensions and pixel data.
func (b *PixelBuffer) Equal(other *PixelBuffer) bool {
	if other == nil || b.Width != other.Width || b.Height != other.Height || b.Channels != other.Channels {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// FromImage converts any image.Image into an RGB PixelBuffer, compositing
// alpha over black the way premultiplied RGBA() already does.
func FromImage(src image.Image) *PixelBuffer {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := NewPixelBuffer(w, h)

	if nrgba, ok := src.(*image.NRGBA); ok {
		// Fast path: copy rows directly, skipping the alpha byte.
		i := 0
		for y := 0; y < h; y++ {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
			for x := 0; x < w; x++ {
				buf.Pix[i] = row[x*4]
				buf.Pix[i+1] = row[x*4+1]
				buf.Pix[i+2] = row[x*4+2]
				i += 3
			}
		}
		return buf
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			buf.Pix[i] = uint8(r >> 8)
			buf.Pix[i+1] = uint8(g >> 8)
			buf.Pix[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return buf
}

// ToImage converts the buffer to an opaque *image.NRGBA for encoding and
// resampling collaborators.
func (b *PixelBuffer) ToImage() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	si := 0
	for y := 0; y < b.Height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Width*4]
		for x := 0; x < b.Width; x++ {
			row[x*4] = b.Pix[si]
			row[x*4+1] = b.Pix[si+1]
			row[x*4+2] = b.Pix[si+2]
			row[x*4+3] = 0xFF
			si += 3
		}
	}
	return dst
}
