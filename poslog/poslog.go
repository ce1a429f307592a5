// Package poslog writes and parses the CSV run logs the position controller
// produces, and computes convergence statistics over them.
package poslog

import (
	"encoding/csv"
	"fmt"
	"image"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// TimestampFormat is the compact timestamp layout used in log rows.
const TimestampFormat = "20060102150405"

// EvaluatorOffset is one evaluator's measured offset within a record.
type EvaluatorOffset struct {
	Name   string
	Weight float64
	Px     image.Point
	MM     r2.Point
}

// Record is one feedback iteration of the controller.
type Record struct {
	Timestamp time.Time
	Target    image.Point
	Setpoint  r2.Point
	Offsets   []EvaluatorOffset
	TotalPx   image.Point
	TotalMM   r2.Point
	Pass      bool
}

// Writer streams records as CSV. The evaluator names and weights, and the
// pass margin, are fixed per log and embedded in the header row.
type Writer struct {
	cw     *csv.Writer
	names  []string
	margin r2.Point
}

// NewWriter writes the header row and returns a record writer.
func NewWriter(w io.Writer, names []string, weights []float64, margin r2.Point) (*Writer, error) {
	if len(names) != len(weights) {
		return nil, errors.Errorf("got %d names and %d weights", len(names), len(weights))
	}
	header := []string{"Timestamp", "Target", "Setpoint"}
	for i, name := range names {
		header = append(header,
			fmt.Sprintf("%s offset x px (weight %g)", name, weights[i]),
			fmt.Sprintf("%s offset y px", name),
			fmt.Sprintf("%s offset x mm", name),
			fmt.Sprintf("%s offset y mm", name),
		)
	}
	header = append(header,
		"Total offset px",
		"Total offset mm",
		fmt.Sprintf("Pass (margin (%g, %g))", margin.X, margin.Y),
	)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	cw.Flush()
	return &Writer{cw: cw, names: names, margin: margin}, nil
}

// Write appends one record. The record's evaluator offsets must match the
// header's evaluators in order.
func (w *Writer) Write(rec Record) error {
	if len(rec.Offsets) != len(w.names) {
		return errors.Errorf("record has %d evaluator offsets, log has %d evaluators",
			len(rec.Offsets), len(w.names))
	}
	row := []string{
		rec.Timestamp.Format(TimestampFormat),
		formatPoint(rec.Target),
		formatR2(rec.Setpoint),
	}
	for i, eo := range rec.Offsets {
		if eo.Name != w.names[i] {
			return errors.Errorf("evaluator %d is %q, log expects %q", i, eo.Name, w.names[i])
		}
		row = append(row,
			strconv.Itoa(eo.Px.X),
			strconv.Itoa(eo.Px.Y),
			strconv.FormatFloat(eo.MM.X, 'f', -1, 64),
			strconv.FormatFloat(eo.MM.Y, 'f', -1, 64),
		)
	}
	pass := "0"
	if rec.Pass {
		pass = "1"
	}
	row = append(row, formatPoint(rec.TotalPx), formatR2(rec.TotalMM), pass)
	if err := w.cw.Write(row); err != nil {
		return err
	}
	w.cw.Flush()
	return w.cw.Error()
}

func formatPoint(p image.Point) string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func formatR2(p r2.Point) string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Log is a fully parsed run log.
type Log struct {
	EvaluatorNames   []string
	EvaluatorWeights []float64
	Margin           r2.Point
	Records          []Record
}

var parenRe = regexp.MustCompile(`\((.*?)\)`)

// Parse reads a run log back into typed records.
func Parse(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading log")
	}
	if len(rows) == 0 {
		return nil, errors.New("empty log")
	}
	log := &Log{}
	header := rows[0]
	if len(header) < 6 {
		return nil, errors.Errorf("header has %d columns, want at least 6", len(header))
	}
	// evaluator columns sit between the three standard leading columns and
	// the three trailing totals, four per evaluator
	i := 3
	for ; i < len(header); i += 4 {
		first := strings.SplitN(header[i], " ", 2)[0]
		if first == "Total" {
			break
		}
		m := parenRe.FindStringSubmatch(header[i])
		if m == nil {
			return nil, errors.Errorf("column %d: no weight in header %q", i, header[i])
		}
		weight, err := strconv.ParseFloat(strings.TrimPrefix(m[1], "weight "), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d weight", i)
		}
		log.EvaluatorNames = append(log.EvaluatorNames, first)
		log.EvaluatorWeights = append(log.EvaluatorWeights, weight)
	}
	passCol := i + 2
	if passCol >= len(header) {
		return nil, errors.New("missing total/pass columns")
	}
	idx := strings.Index(header[passCol], "margin ")
	if idx < 0 {
		return nil, errors.Errorf("no margin in pass header %q", header[passCol])
	}
	marginStr := strings.TrimSuffix(header[passCol][idx+len("margin "):], ")")
	log.Margin, err = parseR2(marginStr)
	if err != nil {
		return nil, errors.Wrap(err, "pass margin")
	}

	for n, row := range rows[1:] {
		rec, err := parseRow(row, log)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", n+1)
		}
		log.Records = append(log.Records, rec)
	}
	return log, nil
}

func parseRow(row []string, log *Log) (Record, error) {
	want := 3 + 4*len(log.EvaluatorNames) + 3
	if len(row) != want {
		return Record{}, errors.Errorf("got %d columns, want %d", len(row), want)
	}
	var rec Record
	var err error
	rec.Timestamp, err = time.Parse(TimestampFormat, row[0])
	if err != nil {
		return Record{}, errors.Wrap(err, "timestamp")
	}
	if rec.Target, err = parsePoint(row[1]); err != nil {
		return Record{}, errors.Wrap(err, "target")
	}
	if rec.Setpoint, err = parseR2(row[2]); err != nil {
		return Record{}, errors.Wrap(err, "setpoint")
	}
	col := 3
	for i, name := range log.EvaluatorNames {
		eo := EvaluatorOffset{Name: name, Weight: log.EvaluatorWeights[i]}
		if eo.Px.X, err = strconv.Atoi(row[col]); err != nil {
			return Record{}, errors.Wrapf(err, "evaluator %s x px", name)
		}
		if eo.Px.Y, err = strconv.Atoi(row[col+1]); err != nil {
			return Record{}, errors.Wrapf(err, "evaluator %s y px", name)
		}
		if eo.MM.X, err = strconv.ParseFloat(row[col+2], 64); err != nil {
			return Record{}, errors.Wrapf(err, "evaluator %s x mm", name)
		}
		if eo.MM.Y, err = strconv.ParseFloat(row[col+3], 64); err != nil {
			return Record{}, errors.Wrapf(err, "evaluator %s y mm", name)
		}
		rec.Offsets = append(rec.Offsets, eo)
		col += 4
	}
	if rec.TotalPx, err = parsePoint(row[col]); err != nil {
		return Record{}, errors.Wrap(err, "total px")
	}
	if rec.TotalMM, err = parseR2(row[col+1]); err != nil {
		return Record{}, errors.Wrap(err, "total mm")
	}
	rec.Pass = row[col+2] == "1"
	return rec, nil
}

func splitPair(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", "", errors.Errorf("%q is not a parenthesized pair", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return "", "", errors.Errorf("%q is not a pair", s)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func parsePoint(s string) (image.Point, error) {
	xs, ys, err := splitPair(s)
	if err != nil {
		return image.Point{}, err
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return image.Point{}, err
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return image.Point{}, err
	}
	return image.Point{X: x, Y: y}, nil
}

func parseR2(s string) (r2.Point, error) {
	xs, ys, err := splitPair(s)
	if err != nil {
		return r2.Point{}, err
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return r2.Point{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return r2.Point{}, err
	}
	return r2.Point{X: x, Y: y}, nil
}
