package wimage

import (
	"image"

	"github.com/Daan4/vision-well-position-controller/utils"
	"github.com/pkg/errors"
)

// Convolve applies the kernel to src, writing the weighted window sum of
// each pixel to dst, clamped to [0,255] and rounded. Kernel positions that
// fall outside the image are skipped entirely; the kernel is NOT
// renormalized for those pixels, so a normalized blur kernel biases border
// pixels darker. src and dst must be distinct buffers.
func Convolve(src, dst *GrayBuffer, kernel *Kernel) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if err := checkDistinct(src, dst); err != nil {
		return err
	}
	if kernel.Width%2 == 0 || kernel.Height%2 == 0 {
		return errors.Errorf("kernel dimensions must be odd, got %dx%d", kernel.Width, kernel.Height)
	}
	xOffsets := makeRangeArray(kernel.Width)
	yOffsets := makeRangeArray(kernel.Height)
	utils.ParallelForEachPixel(image.Point{src.width, src.height}, func(x, y int) {
		sum := 0.0
		for j, dy := range yOffsets {
			for i, dx := range xOffsets {
				if !src.In(x+dx, y+dy) {
					continue
				}
				sum += float64(src.GetXY(x+dx, y+dy)) * kernel.At(i, j)
			}
		}
		dst.SetXY(x, y, uint8(utils.ClampF64(sum+0.5, 0, 255)))
	})
	dst.View = src.View
	return nil
}
