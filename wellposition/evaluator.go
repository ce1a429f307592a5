// Package wellposition positions a well plate under the camera: it steps
// through preset well setpoints (feedforward) and corrects each position
// with a vision feedback loop until the measured offset is within margin.
package wellposition

import (
	"context"
	"image"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/Daan4/vision-well-position-controller/utils"
	"github.com/Daan4/vision-well-position-controller/wimage"
)

// An Evaluator scores a camera frame and reports the offset between the
// found well center and the target point, in pixels.
type Evaluator interface {
	// Evaluate returns the measured offset, or wimage.ErrNoWellFound when
	// the frame contains no usable well.
	Evaluate(img *wimage.GrayBuffer, target image.Point) (image.Point, error)
	Name() string
}

// WellBottomFeatures evaluates frames by locating the illuminated well
// bottom blob and taking its centroid.
type WellBottomFeatures struct {
	params wimage.WellParams
	logger golog.Logger
}

// NewWellBottomFeatures wraps the well-bottom pipeline as an Evaluator.
func NewWellBottomFeatures(params wimage.WellParams, logger golog.Logger) *WellBottomFeatures {
	return &WellBottomFeatures{params: params, logger: logger}
}

// Name implements Evaluator.
func (e *WellBottomFeatures) Name() string {
	return "WellBottomFeatures"
}

// Evaluate implements Evaluator.
func (e *WellBottomFeatures) Evaluate(img *wimage.GrayBuffer, target image.Point) (image.Point, error) {
	res, err := wimage.FindWellOffset(img, target, e.params, e.logger)
	if err != nil {
		return image.Point{}, err
	}
	return res.Offset, nil
}

// WeightedEvaluator pairs an evaluator with its weight in the combined
// measurement.
type WeightedEvaluator struct {
	Evaluator Evaluator
	Weight    float64
}

// EvaluatorOffset is one evaluator's contribution to a measurement.
type EvaluatorOffset struct {
	Name   string
	Weight float64
	Px     image.Point
	Found  bool
}

// measureOffset runs all evaluators against the frame in parallel and
// combines their offsets as a weighted mean. Evaluators reporting
// ErrNoWellFound drop out of the mean; if every evaluator drops out the
// result is ErrNoWellFound.
func measureOffset(ctx context.Context, evals []WeightedEvaluator, img *wimage.GrayBuffer, target image.Point) (image.Point, []EvaluatorOffset, error) {
	offsets := make([]EvaluatorOffset, len(evals))
	fs := make([]utils.SimpleFunc, len(evals))
	for i, we := range evals {
		i, we := i, we
		offsets[i] = EvaluatorOffset{Name: we.Evaluator.Name(), Weight: we.Weight}
		fs[i] = func(ctx context.Context) error {
			off, err := we.Evaluator.Evaluate(img, target)
			if errors.Is(err, wimage.ErrNoWellFound) {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "evaluator %s", we.Evaluator.Name())
			}
			offsets[i].Px = off
			offsets[i].Found = true
			return nil
		}
	}
	if _, err := utils.RunInParallel(ctx, fs); err != nil {
		return image.Point{}, nil, err
	}

	var sum r2.Point
	var weight float64
	for _, eo := range offsets {
		if !eo.Found {
			continue
		}
		sum = sum.Add(r2.Point{X: float64(eo.Px.X), Y: float64(eo.Px.Y)}.Mul(eo.Weight))
		weight += eo.Weight
	}
	if weight == 0 {
		return image.Point{}, offsets, wimage.ErrNoWellFound
	}
	mean := sum.Mul(1 / weight)
	return image.Point{X: roundToInt(mean.X), Y: roundToInt(mean.Y)}, offsets, nil
}

func roundToInt(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
