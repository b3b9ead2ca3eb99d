// Package kernels provides transforms to run through batch.Map: primality
// tests in element and vector form, an affine float transform, and the
// dependent recurrence that shows why concurrent strategies need independent
// elements.
//
// The element forms of Primes and ParsePrimes are registered with package
// process, so that they can also run with the multiprocess strategy.
package kernels

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/process"
)

// Names under which the element forms are registered with package process.
const (
	IsPrimeName      = "kernels.isprime"
	ParseIsPrimeName = "kernels.parse-isprime"
)

// sieveLimit bounds the memory used by SieveIsPrime. Larger values are
// tested by trial division.
const sieveLimit = 1 << 24

func init() {
	process.Register[int, bool](IsPrimeName, IsPrime)
	process.Register[string, bool](ParseIsPrimeName, ParseIsPrime)
}

// IsPrime reports whether n is prime, by trial division with divisors of the
// form 6k-1 and 6k+1. It never fails.
func IsPrime(n int) (bool, error) {
	switch {
	case n < 2:
		return false, nil
	case n < 4:
		return true, nil
	case n%2 == 0 || n%3 == 0:
		return false, nil
	}
	for d := 5; d <= n/d; d += 6 {
		if n%d == 0 || n%(d+2) == 0 {
			return false, nil
		}
	}
	return true, nil
}

// SieveIsPrime reports for each element of ns whether it is prime. It builds
// a sieve of Eratosthenes up to the largest element once, and then answers
// every element by lookup.
func SieveIsPrime(ns []int) ([]bool, error) {
	results := make([]bool, len(ns))
	if len(ns) == 0 {
		return results, nil
	}
	limit := min(slices.Max(ns), sieveLimit)
	composite := sieve(limit)
	for i, n := range ns {
		switch {
		case n < 2:
		case n <= limit:
			results[i] = !composite[n]
		default:
			results[i], _ = IsPrime(n)
		}
	}
	return results, nil
}

func sieve(limit int) []bool {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	for p := 2; p <= limit/p; p++ {
		if composite[p] {
			continue
		}
		for m := p * p; m <= limit; m += p {
			composite[m] = true
		}
	}
	return composite
}

// ParseIsPrime parses s as a decimal integer and reports whether it is
// prime. It fails if s is not an integer.
func ParseIsPrime(s string) (bool, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return false, fmt.Errorf("not an integer: %w", err)
	}
	return IsPrime(n)
}

// ParseSieveIsPrime is the vector form of ParseIsPrime. If an element is not
// an integer, it returns a *parmap.TransformError for the first such element.
func ParseSieveIsPrime(ss []string) ([]bool, error) {
	ns := make([]int, len(ss))
	for i, s := range ss {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &parmap.TransformError{Index: i, Err: fmt.Errorf("not an integer: %w", err)}
		}
		ns[i] = n
	}
	return SieveIsPrime(ns)
}

// Primes returns the primality kernel, with element, vector, and
// multiprocess forms.
func Primes() batch.Kernel[int, bool] {
	return batch.Kernel[int, bool]{
		Name:   IsPrimeName,
		Elem:   IsPrime,
		Vector: SieveIsPrime,
	}
}

// ParsePrimes returns the kernel that parses decimal strings before testing
// them for primality, with element, vector, and multiprocess forms.
func ParsePrimes() batch.Kernel[string, bool] {
	return batch.Kernel[string, bool]{
		Name:   ParseIsPrimeName,
		Elem:   ParseIsPrime,
		Vector: ParseSieveIsPrime,
	}
}
