// Package vector holds the float32 vector math shared by embedding and search.
package vector

import "math"

// MeanPool averages token-level vectors into a single vector.
// Rows shorter than the longest row contribute zeros for the missing tail.
func MeanPool(tokens [][]float32) []float32 {
	if len(tokens) == 0 {
		return nil
	}
	width := 0
	for _, row := range tokens {
		if len(row) > width {
			width = len(row)
		}
	}
	sum := make([]float64, width)
	for _, row := range tokens {
		for i, x := range row {
			sum[i] += float64(x)
		}
	}
	out := make([]float32, width)
	n := float64(len(tokens))
	for i, s := range sum {
		out[i] = float32(s / n)
	}
	return out
}

// Fit truncates or zero-pads v to exactly dim elements. The input is not modified.
func Fit(v []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

// Normalize returns v scaled to unit L2 norm.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	n := Norm(v)
	out := make([]float32, len(v))
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// Dot returns the inner product of a and b over their common prefix.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var s float64
	for i := range n {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Cosine returns the cosine similarity of a and b, 0 if either is a zero vector.
func Cosine(a, b []float32) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}
