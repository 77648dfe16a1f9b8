// Package transform provides the convolution engine and the built-in
// pixel transformations.
package transform

import (
	apperrors "github.com/rasterlab/filterkit/errors"
)

// Kernel is a small numeric weight matrix applied via convolution.  Rows and
// columns must both be odd so a unique centre pixel exists; the centre
// defines the padding radius rows/2 × cols/2.
type Kernel struct {
	Weights [][]float64
}

// NewKernel creates a kernel from a 2D weight slice.
func NewKernel(weights [][]float64) Kernel {
	return Kernel{Weights: weights}
}

// Rows returns the kernel height.
func (k Kernel) Rows() int { return len(k.Weights) }

// Cols returns the kernel width.
func (k Kernel) Cols() int {
	if len(k.Weights) == 0 {
		return 0
	}
	return len(k.Weights[0])
}

// Validate reports ErrInvalidKernel for even or empty dimensions and for
// ragged weight rows.
func (k Kernel) Validate() error {
	rows, cols := k.Rows(), k.Cols()
	if rows < 1 || cols < 1 || rows%2 == 0 || cols%2 == 0 {
		return apperrors.New(apperrors.CategoryTransform, "kernel.validate", apperrors.ErrInvalidKernel)
	}
	for _, row := range k.Weights {
		if len(row) != cols {
			return apperrors.New(apperrors.CategoryTransform, "kernel.validate", apperrors.ErrInvalidKernel)
		}
	}
	return nil
}

// IdentityKernel returns the 1×1 pass-through kernel.
func IdentityKernel() Kernel {
	return NewKernel([][]float64{{1}})
}

// BoxKernel3 returns the uniform 3×3 box blur kernel (1/9 each).
func BoxKernel3() Kernel {
	const w = 1.0 / 9
	return NewKernel([][]float64{
		{w, w, w},
		{w, w, w},
		{w, w, w},
	})
}

// GaussianKernel3 returns the 3×3 Gaussian-like blur kernel (/16).
func GaussianKernel3() Kernel {
	return NewKernel([][]float64{
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
		{2.0 / 16, 4.0 / 16, 2.0 / 16},
		{1.0 / 16, 2.0 / 16, 1.0 / 16},
	})
}

// GaussianKernel5 returns a 5×5 Gaussian blur kernel with sigma ~1.4.
func GaussianKernel5() Kernel {
	return NewKernel([][]float64{
		{2.0 / 159, 4.0 / 159, 5.0 / 159, 4.0 / 159, 2.0 / 159},
		{4.0 / 159, 9.0 / 159, 12.0 / 159, 9.0 / 159, 4.0 / 159},
		{5.0 / 159, 12.0 / 159, 15.0 / 159, 12.0 / 159, 5.0 / 159},
		{4.0 / 159, 9.0 / 159, 12.0 / 159, 9.0 / 159, 4.0 / 159},
		{2.0 / 159, 4.0 / 159, 5.0 / 159, 4.0 / 159, 2.0 / 159},
	})
}

// SharpenKernel returns a mild 3×3 sharpening kernel.
func SharpenKernel() Kernel {
	return NewKernel([][]float64{
		{0, -0.5, 0},
		{-0.5, 3, -0.5},
		{0, -0.5, 0},
	})
}
