package wimage

import (
	"image"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestDrawWellResult(t *testing.T) {
	logger := golog.NewTestLogger(t)
	img := squareTestImage(t)
	res, err := FindWellOffset(img, image.Point{8, 8}, WellParams{
		BlurKernelSize: 3,
		BlurSigma:      1,
		GammaC:         1,
		GammaG:         1,
		Threshold:      100,
		AreaThreshold:  10,
	}, logger)
	test.That(t, err, test.ShouldBeNil)

	out := DrawWellResult(img, res, image.Point{8, 8})
	test.That(t, out, test.ShouldNotBeNil)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 20)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 20)
}
