package wimage

import (
	"image"
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// ErrNoWellFound reports that no blob cleared the area threshold, so there
// is no centroid to offset against. It is a distinct outcome, not an abort.
var ErrNoWellFound = errors.New("no blob matched the well criteria")

// WellParams are the tunables of one well-bottom evaluation.
type WellParams struct {
	// BlurKernelSize is the gaussian kernel size; it must be odd.
	BlurKernelSize int
	// BlurSigma is the gaussian standard deviation.
	BlurSigma float64
	// GammaC and GammaG parameterize the gamma transform 255*c*(v/255)^g.
	GammaC float64
	GammaG float64
	// Threshold is the upper bound of the dark-side fixed threshold.
	Threshold uint8
	// AreaThreshold is the minimum blob area, in pixels, to qualify.
	AreaThreshold int
	// OpenKernelSize, when positive (and odd), opens the mask before hole
	// filling to drop noise specks. Zero skips the step.
	OpenKernelSize int
	// Perimeter selects the perimeter weighting; the zero value means
	// LegacyPerimeterWeights.
	Perimeter PerimeterWeights
}

func (p WellParams) validate() error {
	if p.BlurKernelSize <= 0 || p.BlurKernelSize%2 == 0 {
		return errors.Errorf("blur kernel size must be positive and odd, got %d", p.BlurKernelSize)
	}
	if p.OpenKernelSize < 0 || (p.OpenKernelSize != 0 && p.OpenKernelSize%2 == 0) {
		return errors.Errorf("open kernel size must be odd or zero, got %d", p.OpenKernelSize)
	}
	if p.AreaThreshold < 0 {
		return errors.Errorf("area threshold must not be negative, got %d", p.AreaThreshold)
	}
	return nil
}

func (p WellParams) perimeterWeights() PerimeterWeights {
	if p.Perimeter == (PerimeterWeights{}) {
		return LegacyPerimeterWeights()
	}
	return p.Perimeter
}

// BlobScore holds the shape features of one candidate blob.
type BlobScore struct {
	Label        uint8
	Area         int
	Roundness    float64
	Eccentricity float64
	// Score is (1 - roundness + eccentricity) / 2; lower is better.
	Score    float64
	Centroid image.Point
}

// WellResult is the full outcome of a pipeline run, for callers that want
// more than the offset.
type WellResult struct {
	Offset   image.Point
	Centroid image.Point
	Best     BlobScore
	// Candidates lists every blob that cleared the area threshold.
	Candidates []BlobScore
}

// FindWellOffset locates the best-matching well-bottom blob in a grayscale
// frame and returns the offset of its centroid from the target point.
//
// The stages run in strict sequence: gaussian blur, contrast stretch to the
// full range, gamma, fixed threshold on the dark side, invert, optional
// open, hole filling, labeling, then per-blob scoring by roundness and
// eccentricity. Returns ErrNoWellFound when no blob clears the area
// threshold.
func FindWellOffset(img *GrayBuffer, target image.Point, params WellParams, logger golog.Logger) (WellResult, error) {
	if err := params.validate(); err != nil {
		return WellResult{}, err
	}
	work, err := NewGrayBuffer(img.width, img.height)
	if err != nil {
		return WellResult{}, err
	}
	if err := GaussianBlur(img, work, params.BlurKernelSize, params.BlurSigma); err != nil {
		return WellResult{}, err
	}
	if err := ContrastStretch(work, work, 0, 255); err != nil {
		return WellResult{}, err
	}
	if err := Gamma(work, work, params.GammaC, params.GammaG); err != nil {
		return WellResult{}, err
	}
	if err := Threshold(work, work, 0, params.Threshold); err != nil {
		return WellResult{}, err
	}
	if err := Invert(work, work); err != nil {
		return WellResult{}, err
	}
	if params.OpenKernelSize > 0 {
		kernel, err := FullKernel(params.OpenKernelSize)
		if err != nil {
			return WellResult{}, err
		}
		opened, err := NewGrayBuffer(img.width, img.height)
		if err != nil {
			return WellResult{}, err
		}
		if err := Open(work, opened, kernel); err != nil {
			return WellResult{}, err
		}
		work = opened
	}
	if err := FillHoles(work, work, Eight); err != nil {
		return WellResult{}, err
	}
	count, err := LabelBlobs(work, work, Eight)
	if err != nil {
		return WellResult{}, err
	}
	logger.Debugf("labeled %d blobs", count)

	weights := params.perimeterWeights()
	best := BlobScore{Score: math.Inf(1)}
	found := false
	var candidates []BlobScore
	for label := 1; label <= count; label++ {
		score, err := scoreBlob(work, uint8(label), weights)
		if err != nil {
			return WellResult{}, err
		}
		if score.Area < params.AreaThreshold {
			continue
		}
		logger.Debugf("blob %d: area=%d roundness=%.3f eccentricity=%.3f score=%.3f",
			label, score.Area, score.Roundness, score.Eccentricity, score.Score)
		candidates = append(candidates, score)
		if score.Score < best.Score {
			best = score
			found = true
		}
	}
	if !found {
		return WellResult{}, ErrNoWellFound
	}
	centroid, err := Centroid(work, best.Label)
	if err != nil {
		return WellResult{}, err
	}
	best.Centroid = centroid
	return WellResult{
		Offset:     centroid.Sub(target),
		Centroid:   centroid,
		Best:       best,
		Candidates: candidates,
	}, nil
}

func scoreBlob(labeled *GrayBuffer, label uint8, weights PerimeterWeights) (BlobScore, error) {
	info, err := AnalyseBlob(labeled, label, weights)
	if err != nil {
		return BlobScore{}, err
	}
	roundness := 0.0
	if info.Perimeter > 0 {
		roundness = 4 * math.Pi * float64(info.PixelCount) / (info.Perimeter * info.Perimeter)
	}
	nu20, err := NormalizedCentralMoment(labeled, label, 2, 0)
	if err != nil {
		return BlobScore{}, err
	}
	nu02, err := NormalizedCentralMoment(labeled, label, 0, 2)
	if err != nil {
		return BlobScore{}, err
	}
	nu11, err := NormalizedCentralMoment(labeled, label, 1, 1)
	if err != nil {
		return BlobScore{}, err
	}
	ecc := 0.0
	if s := nu20 + nu02; s != 0 {
		d := nu20 - nu02
		ecc = (d*d + 4*nu11*nu11) / (s * s)
	}
	c, err := Centroid(labeled, label)
	if err != nil {
		return BlobScore{}, err
	}
	return BlobScore{
		Label:        label,
		Area:         info.PixelCount,
		Roundness:    roundness,
		Eccentricity: ecc,
		Score:        (1 - roundness + ecc) / 2,
		Centroid:     c,
	}, nil
}

// EvaluateWellPosition is the flat-array boundary adapter: it wraps a
// row-major sample slice in a buffer, runs the pipeline and returns the
// offset pair.
func EvaluateWellPosition(data []uint8, cols, rows int, target image.Point, params WellParams, logger golog.Logger) (image.Point, error) {
	img, err := NewGrayBufferFromData(data, cols, rows)
	if err != nil {
		return image.Point{}, err
	}
	res, err := FindWellOffset(img, target, params, logger)
	if err != nil {
		return image.Point{}, err
	}
	return res.Offset, nil
}
