package wimage

import (
	"sort"

	"github.com/Daan4/vision-well-position-controller/utils"
	"github.com/pkg/errors"
)

func checkStructuringElement(kernel *Kernel) error {
	if kernel.Width%2 == 0 || kernel.Height%2 == 0 {
		return errors.Errorf("structuring element dimensions must be odd, got %dx%d", kernel.Width, kernel.Height)
	}
	return nil
}

// Erode writes 1 to dst only where every member position of the structuring
// element, centered on the pixel, aligns with a foreground pixel in src.
// Element positions outside the image are treated as satisfied, so border
// pixels survive unless an in-bounds member disagrees. src must be binary;
// src and dst must be distinct buffers.
func Erode(src, dst *GrayBuffer, kernel *Kernel) error {
	return morphOp(src, dst, kernel, true)
}

// Dilate writes 1 to dst where any member position of the structuring
// element, centered on the pixel, aligns with a foreground pixel in src.
// src must be binary; src and dst must be distinct buffers.
func Dilate(src, dst *GrayBuffer, kernel *Kernel) error {
	return morphOp(src, dst, kernel, false)
}

func morphOp(src, dst *GrayBuffer, kernel *Kernel, erode bool) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if err := checkDistinct(src, dst); err != nil {
		return err
	}
	if err := checkView(src, ViewBinary); err != nil {
		return err
	}
	if err := checkStructuringElement(kernel); err != nil {
		return err
	}
	xOffsets := makeRangeArray(kernel.Width)
	yOffsets := makeRangeArray(kernel.Height)
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			out := uint8(0)
			if erode {
				out = 1
			}
			for j, dy := range yOffsets {
				for i, dx := range xOffsets {
					if kernel.At(i, j) == 0 || !src.In(x+dx, y+dy) {
						continue
					}
					v := src.GetXY(x+dx, y+dy)
					if erode && v == 0 {
						out = 0
					} else if !erode && v == 1 {
						out = 1
					}
				}
			}
			dst.SetXY(x, y, out)
		}
	}
	dst.View = ViewBinary
	return nil
}

// Open erodes then dilates with the same structuring element, removing
// foreground specks smaller than the element. src and dst must be distinct
// buffers.
func Open(src, dst *GrayBuffer, kernel *Kernel) error {
	tmp, err := NewGrayBuffer(src.width, src.height)
	if err != nil {
		return err
	}
	if err := Erode(src, tmp, kernel); err != nil {
		return err
	}
	return Dilate(tmp, dst, kernel)
}

// Close dilates then erodes with the same structuring element, filling
// background specks smaller than the element. src and dst must be distinct
// buffers.
func Close(src, dst *GrayBuffer, kernel *Kernel) error {
	tmp, err := NewGrayBuffer(src.width, src.height)
	if err != nil {
		return err
	}
	if err := Dilate(src, tmp, kernel); err != nil {
		return err
	}
	return Erode(tmp, dst, kernel)
}

// GaussianBlur convolves src with a generated kernelSize x kernelSize
// gaussian kernel. kernelSize must be odd. src and dst must be distinct
// buffers.
func GaussianBlur(src, dst *GrayBuffer, kernelSize int, sigma float64) error {
	kernel, err := NewGaussianKernel(kernelSize, sigma)
	if err != nil {
		return err
	}
	return Convolve(src, dst, kernel)
}

// FilterOperation selects the statistic a nonlinear window filter computes.
type FilterOperation int

const (
	// FilterAverage takes the window mean.
	FilterAverage FilterOperation = iota
	// FilterHarmonic takes the window harmonic mean; a zero sample anywhere
	// in the window yields 0.
	FilterHarmonic
	// FilterMax takes the window maximum.
	FilterMax
	// FilterMin takes the window minimum.
	FilterMin
	// FilterMidpoint averages the window minimum and maximum.
	FilterMidpoint
	// FilterMedian takes the window median.
	FilterMedian
	// FilterRange takes max minus min over the window.
	FilterRange
)

// NonlinearFilter applies an n x n order-statistic filter. Window positions
// outside the image are skipped, which shrinks the window for border
// pixels. n must be odd. src and dst must be distinct buffers.
func NonlinearFilter(src, dst *GrayBuffer, fo FilterOperation, n int) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if err := checkDistinct(src, dst); err != nil {
		return err
	}
	if n <= 0 || n%2 == 0 {
		return errors.Errorf("filter window size must be positive and odd, got %d", n)
	}
	offsets := makeRangeArray(n)
	window := make([]int, 0, n*n)
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			window = window[:0]
			for _, dy := range offsets {
				for _, dx := range offsets {
					if !src.In(x+dx, y+dy) {
						continue
					}
					window = append(window, int(src.GetXY(x+dx, y+dy)))
				}
			}
			dst.SetXY(x, y, filterValue(window, fo, n))
		}
	}
	dst.View = src.View
	return nil
}

func filterValue(window []int, fo FilterOperation, n int) uint8 {
	switch fo {
	case FilterAverage:
		sum := 0
		for _, v := range window {
			sum += v
		}
		// divisor stays n*n for shrunken border windows, which darkens
		// border pixels
		return uint8(sum / (n * n))
	case FilterHarmonic:
		z := 0.0
		for _, v := range window {
			if v == 0 {
				return 0
			}
			z += 1 / float64(v)
		}
		return uint8(float64(n*n) / z)
	case FilterMax, FilterMin, FilterMidpoint, FilterRange:
		min, max := 255, 0
		for _, v := range window {
			min = utils.MinInt(min, v)
			max = utils.MaxInt(max, v)
		}
		switch fo {
		case FilterMax:
			return uint8(max)
		case FilterMin:
			return uint8(min)
		case FilterMidpoint:
			return uint8((min + max) / 2)
		default:
			return uint8(utils.MaxInt(max-min, 0))
		}
	case FilterMedian:
		sort.Ints(window)
		if len(window)%2 == 1 {
			return uint8(window[len(window)/2])
		}
		return uint8((window[len(window)/2] + window[(len(window)-1)/2]) / 2)
	}
	return 0
}
