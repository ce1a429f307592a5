package wellposition

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/Daan4/vision-well-position-controller/poslog"
	"github.com/Daan4/vision-well-position-controller/wimage"
)

// A Motor moves one axis by a signed number of steps.
type Motor interface {
	GoSteps(ctx context.Context, steps int) error
	Stop(ctx context.Context) error
}

// A FrameSource produces grayscale camera frames.
type FrameSource interface {
	NextFrame(ctx context.Context) (*wimage.GrayBuffer, error)
}

// Config holds every tunable of a positioning run.
type Config struct {
	// Setpoints are the well centers to visit, in mm.
	Setpoints []r2.Point
	// Target is the pixel the well center should land on.
	Target image.Point
	// MaxAllowedErrorMM is the per-axis pass margin.
	MaxAllowedErrorMM r2.Point
	// MMPerStep converts millimeters to motor steps.
	MMPerStep float64
	// MMPerPixel converts measured pixel offsets to millimeters.
	MMPerPixel float64
	// MaxIterations bounds the feedback loop per setpoint.
	MaxIterations int
	// SettleTime is the wait between a move and the next frame.
	SettleTime time.Duration
}

func (c Config) validate() error {
	if len(c.Setpoints) == 0 {
		return errors.New("need at least one setpoint")
	}
	if c.MMPerStep <= 0 {
		return errors.Errorf("mm per step must be positive, got %f", c.MMPerStep)
	}
	if c.MMPerPixel <= 0 {
		return errors.Errorf("mm per pixel must be positive, got %f", c.MMPerPixel)
	}
	if c.MaxIterations <= 0 {
		return errors.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// PositionController drives the plate through its setpoints: a feedforward
// move per well, then measure-and-correct feedback iterations until the
// offset is inside the pass margin.
type PositionController struct {
	cfg    Config
	motorX Motor
	motorY Motor
	frames FrameSource
	evals  []WeightedEvaluator
	logger golog.Logger
	logw   *poslog.Writer

	mu    sync.Mutex
	posMM r2.Point

	cancelCtx               context.Context
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewPositionController validates the configuration and assembles a
// controller. logw may be nil to disable run logging.
func NewPositionController(
	cfg Config,
	motorX, motorY Motor,
	frames FrameSource,
	logw *poslog.Writer,
	logger golog.Logger,
	evals ...WeightedEvaluator,
) (*PositionController, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(evals) == 0 {
		return nil, errors.New("need at least one evaluator")
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &PositionController{
		cfg:       cfg,
		motorX:    motorX,
		motorY:    motorY,
		frames:    frames,
		evals:     evals,
		logger:    logger,
		logw:      logw,
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}, nil
}

// Start runs the setpoint sequence in a background worker.
func (pc *PositionController) Start() {
	pc.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		if err := pc.RunSetpoints(pc.cancelCtx); err != nil && !errors.Is(err, context.Canceled) {
			pc.logger.Errorw("positioning run failed", "error", err)
		}
	}, pc.activeBackgroundWorkers.Done)
}

// Close stops the worker and the motors.
func (pc *PositionController) Close(ctx context.Context) error {
	pc.cancel()
	pc.activeBackgroundWorkers.Wait()
	return multierr.Combine(pc.motorX.Stop(ctx), pc.motorY.Stop(ctx))
}

// RunSetpoints visits every configured setpoint in order.
func (pc *PositionController) RunSetpoints(ctx context.Context) error {
	for i, sp := range pc.cfg.Setpoints {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		iterations, err := pc.PositionAt(ctx, sp)
		if err != nil {
			return errors.Wrapf(err, "setpoint %d (%.2f, %.2f)", i, sp.X, sp.Y)
		}
		pc.logger.Infow("setpoint reached", "index", i, "iterations", iterations)
	}
	return nil
}

// PositionAt moves to one setpoint and runs the feedback loop until the
// measured error is within margin. It returns the number of feedback
// iterations used.
func (pc *PositionController) PositionAt(ctx context.Context, setpoint r2.Point) (int, error) {
	pc.mu.Lock()
	delta := setpoint.Sub(pc.posMM)
	pc.mu.Unlock()
	if err := pc.moveRelativeMM(ctx, delta); err != nil {
		return 0, err
	}

	for iteration := 1; iteration <= pc.cfg.MaxIterations; iteration++ {
		if pc.cfg.SettleTime > 0 && !goutils.SelectContextOrWait(ctx, pc.cfg.SettleTime) {
			return iteration, ctx.Err()
		}
		frame, err := pc.frames.NextFrame(ctx)
		if err != nil {
			return iteration, errors.Wrap(err, "frame capture")
		}
		offPx, perEval, err := measureOffset(ctx, pc.evals, frame, pc.cfg.Target)
		if errors.Is(err, wimage.ErrNoWellFound) {
			pc.logger.Warnw("no well found in frame", "iteration", iteration)
			continue
		}
		if err != nil {
			return iteration, err
		}
		offMM := r2.Point{
			X: float64(offPx.X) * pc.cfg.MMPerPixel,
			Y: float64(offPx.Y) * pc.cfg.MMPerPixel,
		}
		pass := math.Abs(offMM.X) <= pc.cfg.MaxAllowedErrorMM.X &&
			math.Abs(offMM.Y) <= pc.cfg.MaxAllowedErrorMM.Y
		pc.record(setpoint, offPx, offMM, perEval, pass)
		pc.logger.Debugw("offset measured",
			"iteration", iteration, "px", offPx, "mm", offMM, "pass", pass)
		if pass {
			return iteration, nil
		}
		// the offset points from target to well, so the correction is its
		// negation
		if err := pc.moveRelativeMM(ctx, offMM.Mul(-1)); err != nil {
			return iteration, err
		}
	}
	return pc.cfg.MaxIterations, errors.Errorf(
		"failed to converge within %d iterations", pc.cfg.MaxIterations)
}

// moveRelativeMM converts a mm displacement to steps and drives both axes.
func (pc *PositionController) moveRelativeMM(ctx context.Context, d r2.Point) error {
	stepsX := roundToInt(d.X / pc.cfg.MMPerStep)
	stepsY := roundToInt(d.Y / pc.cfg.MMPerStep)
	if stepsX != 0 {
		if err := pc.motorX.GoSteps(ctx, stepsX); err != nil {
			return errors.Wrap(err, "x axis")
		}
	}
	if stepsY != 0 {
		if err := pc.motorY.GoSteps(ctx, stepsY); err != nil {
			return errors.Wrap(err, "y axis")
		}
	}
	pc.mu.Lock()
	pc.posMM = pc.posMM.Add(r2.Point{
		X: float64(stepsX) * pc.cfg.MMPerStep,
		Y: float64(stepsY) * pc.cfg.MMPerStep,
	})
	pc.mu.Unlock()
	return nil
}

// PositionMM returns the current feedforward position estimate.
func (pc *PositionController) PositionMM() r2.Point {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.posMM
}

func (pc *PositionController) record(setpoint r2.Point, offPx image.Point, offMM r2.Point, perEval []EvaluatorOffset, pass bool) {
	if pc.logw == nil {
		return
	}
	rec := poslog.Record{
		Timestamp: time.Now(),
		Target:    pc.cfg.Target,
		Setpoint:  setpoint,
		TotalPx:   offPx,
		TotalMM:   offMM,
		Pass:      pass,
	}
	for _, eo := range perEval {
		rec.Offsets = append(rec.Offsets, poslog.EvaluatorOffset{
			Name:   eo.Name,
			Weight: eo.Weight,
			Px:     eo.Px,
			MM: r2.Point{
				X: float64(eo.Px.X) * pc.cfg.MMPerPixel,
				Y: float64(eo.Px.Y) * pc.cfg.MMPerPixel,
			},
		})
	}
	if err := pc.logw.Write(rec); err != nil {
		pc.logger.Errorw("failed to write run log record", "error", err)
	}
}
