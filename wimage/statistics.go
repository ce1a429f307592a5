package wimage

import (
	"math"

	"github.com/Daan4/vision-well-position-controller/utils"
)

// Histogram returns the 256-bin sample histogram of the buffer.
func Histogram(img *GrayBuffer) [256]int {
	var hist [256]int
	for _, v := range img.data {
		hist[v]++
	}
	return hist
}

// MinMax scans the buffer for its lowest and highest sample values.
func MinMax(img *GrayBuffer) (uint8, uint8) {
	min := uint8(255)
	max := uint8(0)
	for _, v := range img.data {
		min = utils.MinUint8(min, v)
		max = utils.MaxUint8(max, v)
	}
	return min, max
}

// Sum returns the total of all sample values.
func Sum(img *GrayBuffer) uint64 {
	var total uint64
	for _, v := range img.data {
		total += uint64(v)
	}
	return total
}

// ContrastStretch linearly maps the source's sample range onto
// [bottom, top]. src and dst may alias. A constant image maps entirely to
// bottom.
func ContrastStretch(src, dst *GrayBuffer, bottom, top uint8) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	min, max := MinMax(src)
	if min == max {
		// avoid zero division; the whole image lands on bottom
		max++
	}
	factor := float64(top-bottom) / float64(max-min)
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := float64(i-int(min))*factor + float64(bottom) + 0.5
		lut[i] = uint8(utils.ClampF64(v, float64(bottom), float64(top)))
	}
	for i, v := range src.data {
		dst.data[i] = lut[v]
	}
	dst.View = ViewStretch
	return nil
}

// Gamma applies the transform round(255 * c * (v/255)^g) through a lookup
// table, clamped to [0,255]. src and dst may alias.
func Gamma(src, dst *GrayBuffer, c, g float64) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := 255*c*math.Pow(float64(i)/255, g) + 0.5
		lut[i] = uint8(utils.ClampF64(v, 0, 255))
	}
	for i, v := range src.data {
		dst.data[i] = lut[v]
	}
	dst.View = ViewClip
	return nil
}

// Invert flips the buffer: binary views map 0<->1, all others map v to
// 255-v. src and dst may alias.
func Invert(src, dst *GrayBuffer) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if src.View == ViewBinary {
		for i, v := range src.data {
			dst.data[i] = 1 - v
		}
	} else {
		for i, v := range src.data {
			dst.data[i] = 255 - v
		}
	}
	dst.View = src.View
	return nil
}

// Add accumulates src into dst with saturation at 255. src and dst may
// alias.
func Add(src, dst *GrayBuffer) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	for i, v := range src.data {
		sum := int(dst.data[i]) + int(v)
		dst.data[i] = uint8(utils.MinInt(sum, 255))
	}
	return nil
}

// Multiply scales dst by src pixelwise with saturation at 255. src and dst
// may alias.
func Multiply(src, dst *GrayBuffer) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	for i, v := range src.data {
		prod := int(dst.data[i]) * int(v)
		dst.data[i] = uint8(utils.MinInt(prod, 255))
	}
	return nil
}

// SetSelectedToValue copies src into dst, replacing every sample equal to
// selected with value. src and dst may alias.
func SetSelectedToValue(src, dst *GrayBuffer, selected, value uint8) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	for i, v := range src.data {
		if v == selected {
			dst.data[i] = value
		} else {
			dst.data[i] = v
		}
	}
	return nil
}

// Rotate180 reverses the buffer in place.
func Rotate180(img *GrayBuffer) {
	for l, h := 0, len(img.data)-1; l < h; l, h = l+1, h-1 {
		img.data[l], img.data[h] = img.data[h], img.data[l]
	}
}
