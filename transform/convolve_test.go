package transform

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rasterlab/filterkit/core"
	apperrors "github.com/rasterlab/filterkit/errors"
)

func newFilledBuffer(w, h int, v uint8) *core.PixelBuffer {
	buf := core.NewPixelBuffer(w, h)
	for i := range buf.Pix {
		buf.Pix[i] = v
	}
	return buf
}

func newRandomBuffer(t testing.TB, w, h int, seed int64) *core.PixelBuffer {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	buf := core.NewPixelBuffer(w, h)
	for i := range buf.Pix {
		buf.Pix[i] = uint8(rng.Intn(256))
	}
	return buf
}

func TestConvolve_IdentityKernel(t *testing.T) {
	src := newRandomBuffer(t, 17, 9, 1)

	for _, pad := range []Padding{PadEdge, PadZero} {
		out, err := Convolve(src, IdentityKernel(), pad, 1)
		if err != nil {
			t.Fatalf("Convolve: %v", err)
		}
		if !out.Equal(src) {
			t.Errorf("identity kernel with padding %d altered pixels", pad)
		}
		if &out.Pix[0] == &src.Pix[0] {
			t.Error("output aliases input")
		}
	}
}

func TestConvolve_InvalidKernel(t *testing.T) {
	src := newFilledBuffer(4, 4, 10)

	tests := []struct {
		name    string
		weights [][]float64
	}{
		{"even rows", [][]float64{{1}, {1}}},
		{"even cols", [][]float64{{1, 1}}},
		{"empty", nil},
		{"ragged", [][]float64{{1, 1, 1}, {1, 1}, {1, 1, 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Convolve(src, NewKernel(tc.weights), PadEdge, 1)
			if !errors.Is(err, apperrors.ErrInvalidKernel) {
				t.Errorf("got %v, want ErrInvalidKernel", err)
			}
		})
	}
}

func TestConvolve_ScaleKernelExact(t *testing.T) {
	// A centre weight of 2 doubles each sample exactly; the accumulation is
	// float but every term is exactly representable.
	src := newFilledBuffer(3, 3, 100)
	kernel := NewKernel([][]float64{
		{0, 0, 0},
		{0, 2, 0},
		{0, 0, 0},
	})

	out, err := Convolve(src, kernel, PadEdge, 1)
	if err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	for i, v := range out.Pix {
		if v != 200 {
			t.Fatalf("pix[%d] = %d, want 200", i, v)
		}
	}
}

func TestConvolve_NoClamping_WrapsModulo256(t *testing.T) {
	// 2 × 200 = 400, which wraps to 144 rather than clamping to 255.
	src := newFilledBuffer(2, 2, 200)
	kernel := NewKernel([][]float64{{2}})

	out, err := Convolve(src, kernel, PadEdge, 1)
	if err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	for i, v := range out.Pix {
		if v != 144 {
			t.Fatalf("pix[%d] = %d, want 144 (400 mod 256)", i, v)
		}
	}
}

func TestConvolve_PaddingPolicies(t *testing.T) {
	// A 1×1 image convolved with an all-ones 3×3 kernel isolates the
	// padding behaviour: zero padding contributes nothing, edge padding
	// replicates the single sample into all nine taps.
	src := newFilledBuffer(1, 1, 9)
	ones := NewKernel([][]float64{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	})

	zero, err := Convolve(src, ones, PadZero, 1)
	if err != nil {
		t.Fatalf("Convolve zero: %v", err)
	}
	if zero.Pix[0] != 9 {
		t.Errorf("zero padding: got %d, want 9", zero.Pix[0])
	}

	edge, err := Convolve(src, ones, PadEdge, 1)
	if err != nil {
		t.Fatalf("Convolve edge: %v", err)
	}
	if edge.Pix[0] != 81 {
		t.Errorf("edge padding: got %d, want 81", edge.Pix[0])
	}
}

func TestConvolve_ParallelMatchesSequential(t *testing.T) {
	src := newRandomBuffer(t, 64, 48, 42)

	for _, kernel := range []Kernel{BoxKernel3(), GaussianKernel3(), GaussianKernel5(), SharpenKernel()} {
		for _, pad := range []Padding{PadEdge, PadZero} {
			seq, err := Convolve(src, kernel, pad, 1)
			if err != nil {
				t.Fatalf("sequential: %v", err)
			}
			par, err := Convolve(src, kernel, pad, 8)
			if err != nil {
				t.Fatalf("parallel: %v", err)
			}
			if !par.Equal(seq) {
				t.Errorf("parallel output differs (kernel %dx%d, padding %d)",
					kernel.Rows(), kernel.Cols(), pad)
			}
		}
	}
}

func TestConvolve_PreservesInput(t *testing.T) {
	src := newRandomBuffer(t, 10, 10, 7)
	snapshot := src.Clone()

	if _, err := Convolve(src, GaussianKernel3(), PadZero, 4); err != nil {
		t.Fatalf("Convolve: %v", err)
	}
	if !src.Equal(snapshot) {
		t.Error("convolution mutated its input")
	}
}

func TestKernel_Dimensions(t *testing.T) {
	tests := []struct {
		kernel     Kernel
		rows, cols int
	}{
		{IdentityKernel(), 1, 1},
		{BoxKernel3(), 3, 3},
		{GaussianKernel3(), 3, 3},
		{GaussianKernel5(), 5, 5},
		{SharpenKernel(), 3, 3},
	}
	for _, tc := range tests {
		if tc.kernel.Rows() != tc.rows || tc.kernel.Cols() != tc.cols {
			t.Errorf("kernel %v: got %dx%d, want %dx%d",
				tc.kernel.Weights, tc.kernel.Rows(), tc.kernel.Cols(), tc.rows, tc.cols)
		}
		if err := tc.kernel.Validate(); err != nil {
			t.Errorf("preset kernel failed validation: %v", err)
		}
	}
}

func BenchmarkConvolve_Box3_Sequential(b *testing.B) {
	src := newRandomBuffer(b, 640, 480, 3)
	kernel := BoxKernel3()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Convolve(src, kernel, PadEdge, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConvolve_Box3_Parallel(b *testing.B) {
	src := newRandomBuffer(b, 640, 480, 3)
	kernel := BoxKernel3()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Convolve(src, kernel, PadEdge, 0); err != nil {
			b.Fatal(err)
		}
	}
}
