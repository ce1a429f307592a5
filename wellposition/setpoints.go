package wellposition

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ReadSetpoints parses setpoints from CSV, one "x, y" pair in mm per line.
func ReadSetpoints(r io.Reader) ([]r2.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 2
	var out []r2.Point
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading setpoints")
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "setpoint %d x", len(out))
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "setpoint %d y", len(out))
		}
		out = append(out, r2.Point{X: x, Y: y})
	}
	if len(out) == 0 {
		return nil, errors.New("no setpoints in input")
	}
	return out, nil
}

// LoadSetpoints reads a setpoint CSV file.
func LoadSetpoints(path string) ([]r2.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSetpoints(f)
}

// GenerateGridSetpoints produces the well centers of a rows x cols plate in
// serpentine order (A1..An, then the next row reversed) so consecutive
// setpoints stay adjacent. initialOffset is the position of well A1 and
// pitch the well-to-well distance, both in mm. Setpoint signs are inverted
// to match a stage that moves the plate under a fixed camera.
func GenerateGridSetpoints(rows, cols int, initialOffset, pitch r2.Point) []r2.Point {
	out := make([]r2.Point, 0, rows*cols)
	for y := 0; y < rows; y++ {
		row := make([]r2.Point, 0, cols)
		for x := 0; x < cols; x++ {
			row = append(row, r2.Point{
				X: -(initialOffset.X + float64(x)*pitch.X),
				Y: -(initialOffset.Y + float64(y)*pitch.Y),
			})
		}
		if y%2 != 0 {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		out = append(out, row...)
	}
	return out
}

// WriteSetpoints writes setpoints in the CSV format ReadSetpoints parses.
func WriteSetpoints(w io.Writer, setpoints []r2.Point) error {
	cw := csv.NewWriter(w)
	for _, sp := range setpoints {
		if err := cw.Write([]string{
			strconv.FormatFloat(sp.X, 'f', 2, 64),
			strconv.FormatFloat(sp.Y, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
