package transform

import (
	"runtime"
	"sync"

	"github.com/rasterlab/filterkit/core"
)

// Padding is the rule for synthesizing samples outside the buffer's bounds
// during convolution.
type Padding int

const (
	// PadEdge replicates the nearest border sample.
	PadEdge Padding = iota
	// PadZero treats everything outside the buffer as zero.
	PadZero
)

// Convolve applies kernel to every channel of buf and returns a new buffer
// of identical dimensions.  The weighted sum is accumulated in floating
// point and truncated to 8 bits by integer conversion modulo 256; values are
// deliberately NOT clamped, so kernels whose coefficients do not sum to ~1
// wrap around exactly like a raw byte cast.
//
// workers controls row fan-out; values below 1 resolve to runtime.NumCPU().
// Parallel and sequential runs produce identical output: input rows are
// read-only and each worker writes a disjoint band of the output.
func Convolve(buf *core.PixelBuffer, kernel Kernel, pad Padding, workers int) (*core.PixelBuffer, error) {
	if err := kernel.Validate(); err != nil {
		return nil, err
	}

	kh, kw := kernel.Rows(), kernel.Cols()
	ph, pw := kh/2, kw/2

	padded := padBuffer(buf, ph, pw, pad)
	out := core.NewPixelBuffer(buf.Width, buf.Height)

	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > buf.Height {
		workers = buf.Height
	}
	if workers <= 1 {
		convolveRows(buf, padded, out, kernel, 0, buf.Height)
		return out, nil
	}

	var wg sync.WaitGroup
	rowsPer := (buf.Height + workers - 1) / workers
	for start := 0; start < buf.Height; start += rowsPer {
		end := start + rowsPer
		if end > buf.Height {
			end = buf.Height
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			convolveRows(buf, padded, out, kernel, y0, y1)
		}(start, end)
	}
	wg.Wait()
	return out, nil
}

// convolveRows computes output rows [y0, y1).
func convolveRows(src, padded, out *core.PixelBuffer, kernel Kernel, y0, y1 int) {
	kh, kw := kernel.Rows(), kernel.Cols()
	ch := src.Channels

	for y := y0; y < y1; y++ {
		for x := 0; x < src.Width; x++ {
			for c := 0; c < ch; c++ {
				var sum float64
				for ky := 0; ky < kh; ky++ {
					row := kernel.Weights[ky]
					base := ((y+ky)*padded.Width + x) * ch
					for kx := 0; kx < kw; kx++ {
						sum += float64(padded.Pix[base+kx*ch+c]) * row[kx]
					}
				}
				// Truncate toward zero, then wrap modulo 256.  Matches a
				// raw byte cast of the accumulated value.
				out.Pix[(y*out.Width+x)*ch+c] = uint8(int32(sum))
			}
		}
	}
}

// padBuffer returns buf enlarged by ph rows top/bottom and pw columns
// left/right under the given padding policy.
func padBuffer(buf *core.PixelBuffer, ph, pw int, pad Padding) *core.PixelBuffer {
	padded := core.NewPixelBuffer(buf.Width+2*pw, buf.Height+2*ph)
	ch := buf.Channels

	switch pad {
	case PadZero:
		// The allocation is already zeroed; copy only the interior.
		for y := 0; y < buf.Height; y++ {
			srcRow := buf.Pix[y*buf.Width*ch : (y+1)*buf.Width*ch]
			dstOff := ((y+ph)*padded.Width + pw) * ch
			copy(padded.Pix[dstOff:dstOff+len(srcRow)], srcRow)
		}
	default: // PadEdge
		for py := 0; py < padded.Height; py++ {
			sy := clampIndex(py-ph, buf.Height-1)
			for px := 0; px < padded.Width; px++ {
				sx := clampIndex(px-pw, buf.Width-1)
				srcOff := (sy*buf.Width + sx) * ch
				dstOff := (py*padded.Width + px) * ch
				copy(padded.Pix[dstOff:dstOff+ch], buf.Pix[srcOff:srcOff+ch])
			}
		}
	}
	return padded
}

func clampIndex(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
