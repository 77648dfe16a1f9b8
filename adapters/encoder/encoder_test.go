package encoder

import (
	"bytes"
	"context"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/rasterlab/filterkit/core"
)

func randomBuffer(t testing.TB, w, h int, seed int64) *core.PixelBuffer {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	buf := core.NewPixelBuffer(w, h)
	for i := range buf.Pix {
		buf.Pix[i] = uint8(rng.Intn(256))
	}
	return buf
}

func TestPNG_LosslessRoundTrip(t *testing.T) {
	src := randomBuffer(t, 9, 6, 1)

	data, err := NewPNG().Encode(context.Background(), src, core.EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !core.FromImage(img).Equal(src) {
		t.Error("png encode/decode is not lossless")
	}
}

func TestJPEG_ProducesValidStream(t *testing.T) {
	src := randomBuffer(t, 16, 16, 2)

	data, err := NewJPEG(85).Encode(context.Background(), src, core.EncodeOptions{Quality: 90})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 16 {
		t.Errorf("dimensions = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestJPEG_DefaultQualityApplied(t *testing.T) {
	src := randomBuffer(t, 32, 32, 3)
	enc := NewJPEG(0)
	if enc.DefaultQuality != 85 {
		t.Errorf("DefaultQuality = %d, want 85", enc.DefaultQuality)
	}

	// Zero-quality options fall back to the encoder default.
	if _, err := enc.Encode(context.Background(), src, core.EncodeOptions{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestEncode_NilBuffer(t *testing.T) {
	ctx := context.Background()
	if _, err := NewPNG().Encode(ctx, nil, core.EncodeOptions{}); err == nil {
		t.Error("png: expected error for nil buffer")
	}
	if _, err := NewJPEG(85).Encode(ctx, nil, core.EncodeOptions{}); err == nil {
		t.Error("jpeg: expected error for nil buffer")
	}
	if _, err := NewWebP(85).Encode(ctx, nil, core.EncodeOptions{}); err == nil {
		t.Error("webp: expected error for nil buffer")
	}
}

func TestEncode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNG().Encode(ctx, randomBuffer(t, 2, 2, 4), core.EncodeOptions{}); err == nil {
		t.Error("expected context error")
	}
}
