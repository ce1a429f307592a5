package wimage

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Kernel is a 2D convolution matrix or structuring element. For
// morphological operators any non-zero entry is a member of the element.
type Kernel struct {
	Content [][]float64
	Width   int
	Height  int
}

// NewKernel allocates a zeroed kernel of the given size.
func NewKernel(width, height int) (*Kernel, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid kernel dimensions %dx%d", width, height)
	}
	content := make([][]float64, height)
	for i := range content {
		content[i] = make([]float64, width)
	}
	return &Kernel{Content: content, Width: width, Height: height}, nil
}

// At returns the kernel entry at column x, row y.
func (k *Kernel) At(x, y int) float64 {
	return k.Content[y][x]
}

// Set assigns the kernel entry at column x, row y.
func (k *Kernel) Set(x, y int, v float64) {
	k.Content[y][x] = v
}

// Sum returns the total of all kernel entries.
func (k *Kernel) Sum() float64 {
	total := 0.0
	for _, row := range k.Content {
		total += floats.Sum(row)
	}
	return total
}

// Normalize scales the kernel so its entries sum to 1. A zero-sum kernel is
// left untouched.
func (k *Kernel) Normalize() {
	sum := k.Sum()
	if sum == 0 {
		return
	}
	for _, row := range k.Content {
		floats.Scale(1/sum, row)
	}
}

// Dense returns the kernel as a gonum matrix, mainly for comparisons in
// tests.
func (k *Kernel) Dense() *mat.Dense {
	out := mat.NewDense(k.Height, k.Width, nil)
	for y, row := range k.Content {
		for x, v := range row {
			out.Set(y, x, v)
		}
	}
	return out
}

// makeRangeArray returns the centered offsets for a window of the given
// length, e.g. 3 -> {-1, 0, 1}.
func makeRangeArray(length int) []int {
	if length <= 0 {
		return nil
	}
	out := make([]int, length)
	span := (length - 1) / 2
	for i := range out {
		out[i] = i - span
	}
	return out
}

// GaussianFunction2D returns an isotropic 2D gaussian for the given sigma.
func GaussianFunction2D(sigma float64) func(p1, p2 float64) float64 {
	if sigma <= 0 {
		return func(p1, p2 float64) float64 {
			return 1
		}
	}
	return func(p1, p2 float64) float64 {
		return math.Exp(-0.5*(p1*p1+p2*p2)/(sigma*sigma)) / (sigma * sigma * 2 * math.Pi)
	}
}

// NewGaussianKernel builds a size x size gaussian kernel normalized to sum
// 1. Even sizes have no center pixel and are rejected.
func NewGaussianKernel(size int, sigma float64) (*Kernel, error) {
	if size <= 0 || size%2 == 0 {
		return nil, errors.Errorf("gaussian kernel size must be positive and odd, got %d", size)
	}
	k, err := NewKernel(size, size)
	if err != nil {
		return nil, err
	}
	gaus2D := GaussianFunction2D(sigma)
	offsets := makeRangeArray(size)
	for j, dy := range offsets {
		for i, dx := range offsets {
			k.Content[j][i] = gaus2D(float64(dx), float64(dy))
		}
	}
	k.Normalize()
	return k, nil
}

// FullKernel returns a size x size structuring element with every position
// set. Even sizes are rejected.
func FullKernel(size int) (*Kernel, error) {
	if size <= 0 || size%2 == 0 {
		return nil, errors.Errorf("structuring element size must be positive and odd, got %d", size)
	}
	k, err := NewKernel(size, size)
	if err != nil {
		return nil, err
	}
	for _, row := range k.Content {
		for i := range row {
			row[i] = 1
		}
	}
	return k, nil
}

// CrossKernel returns a size x size structuring element with only the
// center row and column set. Even sizes are rejected.
func CrossKernel(size int) (*Kernel, error) {
	if size <= 0 || size%2 == 0 {
		return nil, errors.Errorf("structuring element size must be positive and odd, got %d", size)
	}
	k, err := NewKernel(size, size)
	if err != nil {
		return nil, err
	}
	mid := size / 2
	for y, row := range k.Content {
		for x := range row {
			if x == mid || y == mid {
				row[x] = 1
			}
		}
	}
	return k, nil
}
