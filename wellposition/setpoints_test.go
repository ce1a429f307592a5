package wellposition

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestReadSetpoints(t *testing.T) {
	in := strings.NewReader("1.50, -2.25\n0.00, 3.10\n")
	pts, err := ReadSetpoints(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pts, test.ShouldResemble, []r2.Point{
		{X: 1.5, Y: -2.25},
		{X: 0, Y: 3.1},
	})
}

func TestReadSetpointsErrors(t *testing.T) {
	_, err := ReadSetpoints(strings.NewReader(""))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ReadSetpoints(strings.NewReader("1.0\n"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ReadSetpoints(strings.NewReader("1.0, abc\n"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSetpointsRoundTrip(t *testing.T) {
	pts := []r2.Point{{X: -12.5, Y: 0.25}, {X: 3, Y: -4.75}}
	var buf bytes.Buffer
	err := WriteSetpoints(&buf, pts)
	test.That(t, err, test.ShouldBeNil)
	back, err := ReadSetpoints(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, pts)
}

func TestGenerateGridSetpoints(t *testing.T) {
	pts := GenerateGridSetpoints(2, 3, r2.Point{X: 10, Y: 20}, r2.Point{X: 9, Y: 9})
	test.That(t, len(pts), test.ShouldEqual, 6)
	// first row walks left to right with inverted signs
	test.That(t, pts[0], test.ShouldResemble, r2.Point{X: -10, Y: -20})
	test.That(t, pts[1], test.ShouldResemble, r2.Point{X: -19, Y: -20})
	test.That(t, pts[2], test.ShouldResemble, r2.Point{X: -28, Y: -20})
	// second row is reversed so travel stays short
	test.That(t, pts[3], test.ShouldResemble, r2.Point{X: -28, Y: -29})
	test.That(t, pts[4], test.ShouldResemble, r2.Point{X: -19, Y: -29})
	test.That(t, pts[5], test.ShouldResemble, r2.Point{X: -10, Y: -29})
}
