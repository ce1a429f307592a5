package poslog

import (
	"bytes"
	"testing"

	"go.viam.com/test"
)

func TestAverageRequiredIterations(t *testing.T) {
	log := sampleLog(t)
	// first setpoint takes two iterations, second takes one
	avg, err := log.AverageRequiredIterations()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, avg, test.ShouldAlmostEqual, 1.5, 1e-9)
}

func TestAverageTravelPerSetpoint(t *testing.T) {
	log := sampleLog(t)
	// setpoint one: hypot(0.4, -0.2) + hypot(0.1, 0); setpoint two:
	// hypot(0, 0.1)
	want := ((0.4472135954999579 + 0.1) + 0.1) / 2
	avg, err := log.AverageTravelPerSetpoint()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, avg, test.ShouldAlmostEqual, want, 1e-9)
}

func TestAverageTimePerSetpoint(t *testing.T) {
	log := sampleLog(t)
	// 3s + 4s for the first setpoint; the final record has no successor and
	// is dropped
	avg, err := log.AverageTimePerSetpoint()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, avg, test.ShouldAlmostEqual, 7, 1e-9)
}

func TestErrorSpreadMM(t *testing.T) {
	log := sampleLog(t)
	mean, sd, err := log.ErrorSpreadMM()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mean, test.ShouldBeGreaterThan, 0)
	test.That(t, sd, test.ShouldBeGreaterThanOrEqualTo, 0)
}

func TestErrorHistogram(t *testing.T) {
	log := sampleLog(t)
	var buf bytes.Buffer
	err := log.ErrorHistogram(&buf, 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldBeGreaterThan, 0)
}

func TestStatsEmptyLog(t *testing.T) {
	log := &Log{}
	_, err := log.AverageRequiredIterations()
	test.That(t, err, test.ShouldNotBeNil)
	_, err = log.AverageTravelPerSetpoint()
	test.That(t, err, test.ShouldNotBeNil)
	_, err = log.AverageTimePerSetpoint()
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = log.ErrorSpreadMM()
	test.That(t, err, test.ShouldNotBeNil)
	err = log.ErrorHistogram(&bytes.Buffer{}, 5)
	test.That(t, err, test.ShouldNotBeNil)
}
