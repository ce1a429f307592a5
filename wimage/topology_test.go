package wimage

import (
	"testing"

	"go.viam.com/test"
)

func TestRemoveBorderBlobs(t *testing.T) {
	src := binaryFrom(t, []uint8{
		1, 1, 0, 0, 0,
		1, 0, 0, 1, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
	}, 5, 5)
	dst, err := NewGrayBuffer(5, 5)
	test.That(t, err, test.ShouldBeNil)
	err = RemoveBorderBlobs(src, dst, Eight)
	test.That(t, err, test.ShouldBeNil)
	// the corner blob is gone, the interior blob stays
	test.That(t, dst.Data(), test.ShouldResemble, []uint8{
		0, 0, 0, 0, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
	})
}

func TestRemoveBorderBlobsConnectivity(t *testing.T) {
	// a diagonal chain to the border is removed under Eight but kept under
	// Four connectivity
	data := []uint8{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
	}
	src := binaryFrom(t, data, 5, 5)
	dst, err := NewGrayBuffer(5, 5)
	test.That(t, err, test.ShouldBeNil)

	err = RemoveBorderBlobs(src, dst, Eight)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.GetXY(2, 2), test.ShouldEqual, 0)

	src = binaryFrom(t, data, 5, 5)
	err = RemoveBorderBlobs(src, dst, Four)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.GetXY(2, 2), test.ShouldEqual, 1)
}

func TestFillHoles(t *testing.T) {
	src := binaryFrom(t, []uint8{
		0, 0, 0, 0, 0,
		0, 1, 1, 1, 0,
		0, 1, 0, 1, 0,
		0, 1, 1, 1, 0,
		0, 0, 0, 0, 0,
	}, 5, 5)
	dst, err := NewGrayBuffer(5, 5)
	test.That(t, err, test.ShouldBeNil)
	err = FillHoles(src, dst, Four)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.GetXY(2, 2), test.ShouldEqual, 1)
	// outside background stays background
	test.That(t, dst.GetXY(0, 0), test.ShouldEqual, 0)
	test.That(t, dst.GetXY(4, 4), test.ShouldEqual, 0)
}

func TestFillHolesAllForegroundBorder(t *testing.T) {
	// no background on the border means no outside to flood from; the whole
	// image fills
	src, err := NewGrayBuffer(4, 4)
	test.That(t, err, test.ShouldBeNil)
	src.Fill(1)
	src.View = ViewBinary
	src.SetXY(1, 1, 0)
	src.SetXY(2, 2, 0)
	err = FillHoles(src, src, Four)
	test.That(t, err, test.ShouldBeNil)
	for _, v := range src.Data() {
		test.That(t, v, test.ShouldEqual, 1)
	}
}

func TestFillHolesAfterRemoveBorderBlobs(t *testing.T) {
	// one border-touching blob and one interior blob with a hole: removal
	// then filling leaves only the solid interior blob
	src := binaryFrom(t, []uint8{
		1, 1, 0, 0, 0, 0, 0,
		1, 1, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 1, 1, 0,
		0, 0, 0, 1, 0, 1, 0,
		0, 0, 0, 1, 1, 1, 0,
		0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0,
	}, 7, 7)
	err := RemoveBorderBlobs(src, src, Eight)
	test.That(t, err, test.ShouldBeNil)
	err = FillHoles(src, src, Eight)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, src.Data(), test.ShouldResemble, []uint8{
		0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 1, 1, 0,
		0, 0, 0, 1, 1, 1, 0,
		0, 0, 0, 1, 1, 1, 0,
		0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0,
	})
}

func TestLabelBlobsNone(t *testing.T) {
	src, err := NewGrayBuffer(5, 5)
	test.That(t, err, test.ShouldBeNil)
	src.View = ViewBinary
	count, err := LabelBlobs(src, src, Eight)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 0)
}

func TestLabelBlobsSingle(t *testing.T) {
	src := binaryFrom(t, []uint8{
		0, 0, 0, 0,
		0, 1, 1, 0,
		0, 1, 1, 0,
		0, 0, 0, 0,
	}, 4, 4)
	count, err := LabelBlobs(src, src, Eight)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 1)
	test.That(t, src.View, test.ShouldEqual, ViewLabeled)
	test.That(t, src.GetXY(1, 1), test.ShouldEqual, 1)
	test.That(t, src.GetXY(2, 2), test.ShouldEqual, 1)
	test.That(t, src.GetXY(0, 0), test.ShouldEqual, 0)
}

func TestLabelBlobsMultiple(t *testing.T) {
	src := binaryFrom(t, []uint8{
		1, 1, 0, 0, 1,
		1, 1, 0, 0, 1,
		0, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 1, 0, 1, 1,
	}, 5, 5)
	count, err := LabelBlobs(src, src, Eight)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 4)
	// labels are contiguous 1..count with each component uniform
	seen := map[uint8]bool{}
	for _, v := range src.Data() {
		if v != 0 {
			seen[v] = true
		}
	}
	test.That(t, len(seen), test.ShouldEqual, 4)
	for label := uint8(1); label <= 4; label++ {
		test.That(t, seen[label], test.ShouldBeTrue)
	}
	test.That(t, src.GetXY(0, 0), test.ShouldEqual, src.GetXY(1, 1))
	test.That(t, src.GetXY(3, 4), test.ShouldEqual, src.GetXY(4, 4))
	test.That(t, src.GetXY(0, 0), test.ShouldNotEqual, src.GetXY(4, 0))
}

func TestLabelBlobsUShape(t *testing.T) {
	// the two arms meet at the bottom; downward relabeling must merge them
	// into one component
	src := binaryFrom(t, []uint8{
		1, 0, 1,
		1, 0, 1,
		1, 1, 1,
	}, 3, 3)
	count, err := LabelBlobs(src, src, Four)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 1)
}

func TestLabelBlobsIdempotent(t *testing.T) {
	src := binaryFrom(t, []uint8{
		1, 1, 0, 0, 1,
		1, 1, 0, 0, 1,
		0, 0, 0, 0, 0,
		1, 0, 0, 1, 1,
		1, 0, 0, 1, 1,
	}, 5, 5)
	first, err := LabelBlobs(src, src, Four)
	test.That(t, err, test.ShouldBeNil)

	// threshold the label map back to binary and label again
	err = Threshold(src, src, 1, 255)
	test.That(t, err, test.ShouldBeNil)
	second, err := LabelBlobs(src, src, Four)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second, test.ShouldEqual, first)
}

func TestLabelBlobsOverflow(t *testing.T) {
	// a 32x32 checkerboard has 512 isolated pixels under Four connectivity
	src, err := NewGrayBuffer(32, 32)
	test.That(t, err, test.ShouldBeNil)
	src.View = ViewBinary
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x+y)%2 == 0 {
				src.SetXY(x, y, 1)
			}
		}
	}
	_, err = LabelBlobs(src, src, Four)
	test.That(t, err, test.ShouldBeError, ErrLabelOverflow)
}

func TestLabelBlobsRejectsNonBinary(t *testing.T) {
	src, err := NewGrayBuffer(3, 3)
	test.That(t, err, test.ShouldBeNil)
	_, err = LabelBlobs(src, src, Eight)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBinaryEdgeDetect(t *testing.T) {
	src := binaryFrom(t, []uint8{
		0, 0, 0, 0, 0,
		0, 1, 1, 1, 0,
		0, 1, 1, 1, 0,
		0, 1, 1, 1, 0,
		0, 0, 0, 0, 0,
	}, 5, 5)
	dst, err := NewGrayBuffer(5, 5)
	test.That(t, err, test.ShouldBeNil)
	err = BinaryEdgeDetect(src, dst, Four)
	test.That(t, err, test.ShouldBeNil)
	// the interior pixel goes, the ring stays
	test.That(t, dst.GetXY(2, 2), test.ShouldEqual, 0)
	test.That(t, dst.GetXY(1, 1), test.ShouldEqual, 1)
	test.That(t, dst.GetXY(2, 1), test.ShouldEqual, 1)
	test.That(t, dst.GetXY(0, 0), test.ShouldEqual, 0)
}

func TestBinaryEdgeDetectIsolatedPixel(t *testing.T) {
	src := binaryFrom(t, []uint8{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, 3, 3)
	dst, err := NewGrayBuffer(3, 3)
	test.That(t, err, test.ShouldBeNil)
	err = BinaryEdgeDetect(src, dst, Four)
	test.That(t, err, test.ShouldBeNil)
	// an isolated pixel has no foreground neighbors and resolves to
	// background
	test.That(t, dst.GetXY(1, 1), test.ShouldEqual, 0)
}
