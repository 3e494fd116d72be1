// Package indicators provides stateless technical indicator calculations
// over closing-price series. Every function returns a series index-aligned
// with its input; entries inside the warm-up window are NaN, never zero.
package indicators

import "math"

// warmup allocates a full-length series with the first n entries NaN.
func warmup(length, n int) []float64 {
	out := make([]float64, length)
	for i := 0; i < n && i < length; i++ {
		out[i] = math.NaN()
	}
	return out
}
