// Package signal holds the numeric kernels shared by the quality metrics.
//
// Functions operating on two signals use the common prefix of both slices;
// no function here panics on a length mismatch.
package signal

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Truncate returns a and b cut to their common length min(len(a), len(b)).
// The returned slices share storage with the inputs.
func Truncate(a, b []float64) ([]float64, []float64) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

// Mean returns the arithmetic mean of x.
// Returns 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	// Kahan summation keeps long speech buffers from drifting.
	var sum, c float64
	for _, v := range x {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(x))
}

// Centered returns a copy of x with its mean removed.
func Centered(x []float64) []float64 {
	out := make([]float64, len(x))
	mean := Mean(x)

	for i, v := range x {
		out[i] = v - mean
	}

	return out
}

// Energy returns sum(x[i]^2).
func Energy(x []float64) float64 {
	return Dot(x, x)
}

// Dot returns sum(a[i] * b[i]) over the common length of a and b.
func Dot(a, b []float64) float64 {
	a, b = Truncate(a, b)
	if len(a) == 0 {
		return 0
	}

	prod := make([]float64, len(a))
	vecmath.MulBlock(prod, a, b)

	var sum float64
	for _, v := range prod {
		sum += v
	}

	return sum
}

// Scale returns a new slice holding src[i] * scalar.
func Scale(src []float64, scalar float64) []float64 {
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = v * scalar
	}

	return dst
}

// Sub returns a[i] - b[i] over the common length of a and b.
func Sub(a, b []float64) []float64 {
	a, b = Truncate(a, b)

	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}

	return out
}

// PowerRatioDB converts the power ratio num/den to decibels (10*log10).
// A zero numerator yields -Inf; the caller keeps den positive.
func PowerRatioDB(num, den float64) float64 {
	return 10 * math.Log10(num/den)
}
