// Package utils holds small repo-local math and concurrency helpers shared
// by the image operators and the position controller.
package utils

import (
	"math"
	"sort"
)

// AbsInt returns the absolute value of n.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxUint8 returns the larger of a and b.
func MaxUint8(a, b uint8) uint8 {
	if a < b {
		return b
	}
	return a
}

// MinUint8 returns the smaller of a and b.
func MinUint8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// ClampF64 limits v to [min, max].
func ClampF64(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// Square is faster than math.Pow(x, 2).
func Square(n float64) float64 {
	return n * n
}

// SquareInt is faster than math.Pow(x, 2).
func SquareInt(n int) int {
	return n * n
}

// Median returns the middle of the given values.
func Median(values ...float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sort.Float64s(values)

	return values[int(math.Floor(float64(len(values))/2))]
}
