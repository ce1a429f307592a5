package wimage

// Brightness selects which side of a computed threshold becomes foreground.
type Brightness uint8

const (
	// Bright makes samples at or above the threshold foreground.
	Bright Brightness = 0
	// Dark makes samples below the threshold foreground.
	Dark Brightness = 1
)

// Threshold binarizes: output 1 where low <= v <= high, else 0. src and dst
// may alias.
func Threshold(src, dst *GrayBuffer, low, high uint8) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	for i, v := range src.data {
		if v >= low && v <= high {
			dst.data[i] = 1
		} else {
			dst.data[i] = 0
		}
	}
	dst.View = ViewBinary
	return nil
}

// ThresholdTwoMeans binarizes using the iterative two-means threshold.
// Starting from T = (max-min)/2, the histogram is split at T (the bin at T
// belongs to neither side), each side's mean is computed, and T moves to the
// average of the two means until it stops changing. An empty side's mean is
// defined as 0, so a constant image terminates rather than dividing by
// zero. Samples >= T map to 1-brightness, the rest to brightness. src and
// dst may alias.
func ThresholdTwoMeans(src, dst *GrayBuffer, brightness Brightness) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	min, max := MinMax(src)
	hist := Histogram(src)
	t := int(max-min) / 2
	for {
		var left, leftCount, right, rightCount int
		for i := 0; i < 256; i++ {
			switch {
			case i < t:
				left += hist[i] * i
				leftCount += hist[i]
			case i > t:
				right += hist[i] * i
				rightCount += hist[i]
			}
		}
		if leftCount > 0 {
			left /= leftCount
		} else {
			left = 0
		}
		if rightCount > 0 {
			right /= rightCount
		} else {
			right = 0
		}
		newT := (left + right) / 2
		if newT == t {
			break
		}
		t = newT
	}
	binarizeAt(src, dst, uint8(t), brightness)
	return nil
}

// ThresholdOtsu binarizes at the threshold maximizing the between-class
// variance N_back * N_object * (mean_back - mean_object)^2, where the object
// class holds the samples strictly below the candidate threshold and the
// background class the rest. Ties keep the lowest threshold. A constant
// image has zero variance everywhere and binarizes uniformly at threshold
// 0. src and dst may alias.
func ThresholdOtsu(src, dst *GrayBuffer, brightness Brightness) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	hist := Histogram(src)
	n := src.width * src.height
	sum := 0
	for i := 0; i < 256; i++ {
		sum += hist[i] * i
	}

	var maxBCV float64
	best := 0
	var nObject, sumObject int
	for t := 0; t < 256; t++ {
		var meanObject, meanBack float64
		if nObject > 0 {
			meanObject = float64(sumObject) / float64(nObject)
		}
		nBack := n - nObject
		if nBack > 0 {
			meanBack = float64(sum-sumObject) / float64(nBack)
		}
		d := meanBack - meanObject
		bcv := float64(nBack) * float64(nObject) * d * d
		if bcv > maxBCV {
			maxBCV = bcv
			best = t
		}
		nObject += hist[t]
		sumObject += hist[t] * t
	}
	binarizeAt(src, dst, uint8(best), brightness)
	return nil
}

func binarizeAt(src, dst *GrayBuffer, t uint8, brightness Brightness) {
	for i, v := range src.data {
		if v >= t {
			dst.data[i] = 1 - uint8(brightness)
		} else {
			dst.data[i] = uint8(brightness)
		}
	}
	dst.View = ViewBinary
}
