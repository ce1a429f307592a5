package poslog

import (
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/Daan4/vision-well-position-controller/utils"
)

// perSetpoint folds the record stream into one value per reached setpoint:
// records accumulate until a passing record closes the group. A trailing
// group with no pass is dropped, since its setpoint was never reached.
func (l *Log) perSetpoint(accumulate func(acc float64, rec Record) float64) []float64 {
	var out []float64
	acc := 0.0
	for _, rec := range l.Records {
		acc = accumulate(acc, rec)
		if rec.Pass {
			out = append(out, acc)
			acc = 0
		}
	}
	return out
}

// AverageRequiredIterations returns the mean number of feedback iterations
// needed to reach a setpoint.
func (l *Log) AverageRequiredIterations() (float64, error) {
	counts := l.perSetpoint(func(acc float64, rec Record) float64 {
		return acc + 1
	})
	if len(counts) == 0 {
		return 0, errors.New("log contains no reached setpoints")
	}
	return stats.Mean(counts)
}

// AverageTravelPerSetpoint returns the mean total error distance in mm
// traveled before settling on a setpoint. Distances are euclidean even
// though the axes move one at a time.
func (l *Log) AverageTravelPerSetpoint() (float64, error) {
	travel := l.perSetpoint(func(acc float64, rec Record) float64 {
		return acc + math.Hypot(rec.TotalMM.X, rec.TotalMM.Y)
	})
	if len(travel) == 0 {
		return 0, errors.New("log contains no reached setpoints")
	}
	return stats.Mean(travel)
}

// AverageTimePerSetpoint returns the mean seconds spent per reached
// setpoint, from consecutive record timestamps. The final record is
// ignored since nothing follows it to measure against.
func (l *Log) AverageTimePerSetpoint() (float64, error) {
	var times []float64
	acc := 0.0
	for i, rec := range l.Records[:utils.MaxInt(len(l.Records)-1, 0)] {
		acc += l.Records[i+1].Timestamp.Sub(rec.Timestamp).Seconds()
		if rec.Pass {
			times = append(times, acc)
			acc = 0
		}
	}
	if len(times) == 0 {
		return 0, errors.New("log contains no reached setpoints")
	}
	return stats.Mean(times)
}

// ErrorSpreadMM returns the mean and standard deviation of the euclidean
// error magnitude across all iterations.
func (l *Log) ErrorSpreadMM() (float64, float64, error) {
	if len(l.Records) == 0 {
		return 0, 0, errors.New("empty log")
	}
	mags := make([]float64, 0, len(l.Records))
	for _, rec := range l.Records {
		mags = append(mags, math.Hypot(rec.TotalMM.X, rec.TotalMM.Y))
	}
	mean, err := stats.Mean(mags)
	if err != nil {
		return 0, 0, err
	}
	sd, err := stats.StandardDeviation(mags)
	if err != nil {
		return 0, 0, err
	}
	return mean, sd, nil
}

// ErrorHistogram renders a terminal histogram of per-iteration error
// magnitudes in mm.
func (l *Log) ErrorHistogram(w io.Writer, bins int) error {
	if len(l.Records) == 0 {
		return errors.New("empty log")
	}
	mags := make([]float64, 0, len(l.Records))
	for _, rec := range l.Records {
		mags = append(mags, math.Hypot(rec.TotalMM.X, rec.TotalMM.Y))
	}
	hist := histogram.Hist(bins, mags)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
