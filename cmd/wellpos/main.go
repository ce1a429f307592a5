// Package main evaluates a single well image: it runs the well-bottom
// pipeline on an image file and prints the offset of the found well center
// from the target point.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/Daan4/vision-well-position-controller/wimage"
)

func main() {
	imgFile := flag.String("image", "", "grayscale image to evaluate")
	targetX := flag.Int("target-x", 0, "target x coordinate in pixels")
	targetY := flag.Int("target-y", 0, "target y coordinate in pixels")
	blurSize := flag.Int("blur-size", 25, "gaussian blur kernel size (odd)")
	blurSigma := flag.Float64("blur-sigma", 1.0, "gaussian blur sigma")
	gammaC := flag.Float64("gamma-c", 0.5, "gamma constant c")
	gammaG := flag.Float64("gamma-g", 8.0, "gamma exponent g")
	threshold := flag.Int("threshold", 20, "dark-side threshold value")
	areaThreshold := flag.Int("area-threshold", 5000, "minimum blob area in pixels")
	openSize := flag.Int("open-size", 0, "opening kernel size, 0 to skip")
	outFile := flag.String("out", "", "write a result overlay image here")
	debug := flag.Bool("debug", false, "enable debug logging")

	flag.Parse()

	logger := golog.NewDevelopmentLogger("wellpos")
	if *debug {
		logger = golog.NewDebugLogger("wellpos")
	}

	if err := realMain(*imgFile, image.Point{*targetX, *targetY}, wimage.WellParams{
		BlurKernelSize: *blurSize,
		BlurSigma:      *blurSigma,
		GammaC:         *gammaC,
		GammaG:         *gammaG,
		Threshold:      uint8(*threshold),
		AreaThreshold:  *areaThreshold,
		OpenKernelSize: *openSize,
	}, *outFile, logger); err != nil {
		logger.Fatal(err)
	}
}

func realMain(imgFile string, target image.Point, params wimage.WellParams, outFile string, logger golog.Logger) error {
	if imgFile == "" {
		flag.Usage()
		os.Exit(1)
	}
	src, err := imaging.Open(imgFile)
	if err != nil {
		return errors.Wrapf(err, "opening %s", imgFile)
	}
	img, err := wimage.ConvertImage(src)
	if err != nil {
		return err
	}

	res, err := wimage.FindWellOffset(img, target, params, logger)
	if errors.Is(err, wimage.ErrNoWellFound) {
		fmt.Println("no match found")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("offset: (%d, %d)\n", res.Offset.X, res.Offset.Y)
	fmt.Printf("centroid: (%d, %d) score: %.3f area: %d\n",
		res.Centroid.X, res.Centroid.Y, res.Best.Score, res.Best.Area)

	if outFile != "" {
		overlay := wimage.DrawWellResult(img, res, target)
		if err := imaging.Save(overlay, outFile); err != nil {
			return errors.Wrapf(err, "saving %s", outFile)
		}
		logger.Infow("wrote overlay", "path", outFile)
	}
	return nil
}
