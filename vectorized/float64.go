package vectorized

import (
	"gonum.org/v1/gonum/floats"

	"github.com/exascience/parmap"
)

// Float64 adapts an in-place kernel over float64 slices to a vector form.
// The kernel receives a fresh destination slice and the unmodified source
// slice, which must not be written to.
func Float64(kernel func(dst, src []float64)) parmap.VectorFunc[float64, float64] {
	return func(src []float64) ([]float64, error) {
		dst := make([]float64, len(src))
		kernel(dst, src)
		return dst, nil
	}
}

// Affine returns the vector form of x*a + b.
func Affine(a, b float64) parmap.VectorFunc[float64, float64] {
	return Float64(func(dst, src []float64) {
		floats.ScaleTo(dst, a, src)
		floats.AddConst(b, dst)
	})
}
