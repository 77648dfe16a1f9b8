package decoder

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/rasterlab/filterkit/core"
)

func fixtureImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			img.Pix[i] = uint8(x * 20)
			img.Pix[i+1] = uint8(y * 20)
			img.Pix[i+2] = 128
			img.Pix[i+3] = 0xFF
		}
	}
	return img
}

func TestPNG_Decode(t *testing.T) {
	img := fixtureImage(5, 3)
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	buf, meta, err := NewPNG().Decode(context.Background(), &encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if meta.Format != core.FormatPNG || meta.Width != 5 || meta.Height != 3 {
		t.Errorf("metadata = %+v", meta)
	}
	if !buf.Equal(core.FromImage(img)) {
		t.Error("decoded pixels differ from fixture")
	}
}

func TestJPEG_Decode(t *testing.T) {
	img := fixtureImage(8, 8)
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	buf, meta, err := NewJPEG().Decode(context.Background(), &encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if meta.Format != core.FormatJPEG {
		t.Errorf("format = %v", meta.Format)
	}
	if buf.Width != 8 || buf.Height != 8 {
		t.Errorf("dimensions = %dx%d", buf.Width, buf.Height)
	}
}

func TestDecode_CorruptInput(t *testing.T) {
	if _, _, err := NewPNG().Decode(context.Background(), strings.NewReader("not a png")); err == nil {
		t.Error("png: expected decode error")
	}
	if _, _, err := NewJPEG().Decode(context.Background(), strings.NewReader("not a jpeg")); err == nil {
		t.Error("jpeg: expected decode error")
	}
}

func TestDecode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewPNG().Decode(ctx, strings.NewReader("")); err == nil {
		t.Error("expected context error")
	}
}

func TestCanDecode(t *testing.T) {
	if !NewPNG().CanDecode(core.FormatPNG) || NewPNG().CanDecode(core.FormatJPEG) {
		t.Error("png CanDecode mismatch")
	}
	if !NewJPEG().CanDecode(core.FormatJPEG) {
		t.Error("jpeg CanDecode mismatch")
	}
	if !NewWebP().CanDecode(core.FormatWebP) {
		t.Error("webp CanDecode mismatch")
	}
}
