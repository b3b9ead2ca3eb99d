package kernels

import (
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/vectorized"
)

// Affine returns the kernel computing x*a + b, with element and vector
// forms. Both forms round the product before adding b, so that they agree
// bit for bit.
func Affine(a, b float64) batch.Kernel[float64, float64] {
	return batch.Kernel[float64, float64]{
		Elem: func(x float64) (float64, error) {
			return float64(x*a) + b, nil
		},
		Vector: vectorized.Affine(a, b),
	}
}
