package wimage

import (
	"testing"

	"go.viam.com/test"
)

func TestThreshold(t *testing.T) {
	b := bufferFrom(t, []uint8{0, 50, 100, 150, 200, 255}, 6, 1)
	dst, err := NewGrayBuffer(6, 1)
	test.That(t, err, test.ShouldBeNil)
	err = Threshold(b, dst, 50, 150)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.Data(), test.ShouldResemble, []uint8{0, 1, 1, 1, 0, 0})
	test.That(t, dst.View, test.ShouldEqual, ViewBinary)
}

func TestThresholdSingleValue(t *testing.T) {
	// threshold(v, v) keeps exactly the pixels equal to v
	b := bufferFrom(t, []uint8{99, 100, 101, 100}, 4, 1)
	err := Threshold(b, b, 100, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Data(), test.ShouldResemble, []uint8{0, 1, 0, 1})
}

func bimodalImage(t *testing.T) *GrayBuffer {
	t.Helper()
	b, err := NewGrayBuffer(10, 10)
	test.That(t, err, test.ShouldBeNil)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				b.SetXY(x, y, 10)
			} else {
				b.SetXY(x, y, 200)
			}
		}
	}
	return b
}

func TestThresholdTwoMeansBimodal(t *testing.T) {
	b := bimodalImage(t)
	dst, err := NewGrayBuffer(10, 10)
	test.That(t, err, test.ShouldBeNil)
	err = ThresholdTwoMeans(b, dst, Bright)
	test.That(t, err, test.ShouldBeNil)
	// bright foreground: the 200-valued half becomes 1
	test.That(t, dst.GetXY(0, 0), test.ShouldEqual, 0)
	test.That(t, dst.GetXY(9, 9), test.ShouldEqual, 1)
	test.That(t, dst.View, test.ShouldEqual, ViewBinary)

	err = ThresholdTwoMeans(b, dst, Dark)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.GetXY(0, 0), test.ShouldEqual, 1)
	test.That(t, dst.GetXY(9, 9), test.ShouldEqual, 0)
}

func TestThresholdTwoMeansConstant(t *testing.T) {
	// must terminate instead of dividing by an empty partition
	b := bufferFrom(t, []uint8{42, 42, 42, 42}, 2, 2)
	err := ThresholdTwoMeans(b, b, Bright)
	test.That(t, err, test.ShouldBeNil)
	first := b.GetXY(0, 0)
	for _, v := range b.Data() {
		test.That(t, v, test.ShouldEqual, first)
	}
}

func TestThresholdOtsuBimodal(t *testing.T) {
	b := bimodalImage(t)
	dst, err := NewGrayBuffer(10, 10)
	test.That(t, err, test.ShouldBeNil)
	err = ThresholdOtsu(b, dst, Bright)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.GetXY(0, 0), test.ShouldEqual, 0)
	test.That(t, dst.GetXY(9, 9), test.ShouldEqual, 1)

	err = ThresholdOtsu(b, dst, Dark)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.GetXY(0, 0), test.ShouldEqual, 1)
	test.That(t, dst.GetXY(9, 9), test.ShouldEqual, 0)
}

func TestThresholdOtsuConstant(t *testing.T) {
	// zero variance everywhere binarizes uniformly
	b := bufferFrom(t, []uint8{42, 42, 42, 42}, 2, 2)
	err := ThresholdOtsu(b, b, Bright)
	test.That(t, err, test.ShouldBeNil)
	first := b.GetXY(0, 0)
	for _, v := range b.Data() {
		test.That(t, v, test.ShouldEqual, first)
	}
}
