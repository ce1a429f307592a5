package wimage

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// BlobInfo holds the single-pass measurements of one labeled blob.
type BlobInfo struct {
	// Width and Height are the bounding-box extents in pixels.
	Width  int
	Height int
	// PixelCount is the blob area in pixels.
	PixelCount int
	// Perimeter is the weighted boundary-length estimate.
	Perimeter float64
}

// PerimeterWeights are the per-pixel perimeter contributions by the number
// of exposed 4-connected edges (1 through 4).
type PerimeterWeights struct {
	One, Two, Three, Four float64
}

// LegacyPerimeterWeights keeps the historical three-edge coefficient
// 0.5/(1+sqrt 2), which breaks the progression of the one- and two-edge
// cases but matches results produced before CorrectedPerimeterWeights
// existed.
func LegacyPerimeterWeights() PerimeterWeights {
	return PerimeterWeights{
		One:   1,
		Two:   math.Sqrt2,
		Three: 0.5 / (1 + math.Sqrt2),
		Four:  2 * math.Sqrt2,
	}
}

// CorrectedPerimeterWeights continues the edge-count progression with
// 0.5*(1+sqrt 2) for three exposed edges.
func CorrectedPerimeterWeights() PerimeterWeights {
	return PerimeterWeights{
		One:   1,
		Two:   math.Sqrt2,
		Three: 0.5 * (1 + math.Sqrt2),
		Four:  2 * math.Sqrt2,
	}
}

func (w PerimeterWeights) forEdges(n int) float64 {
	switch n {
	case 1:
		return w.One
	case 2:
		return w.Two
	case 3:
		return w.Three
	case 4:
		return w.Four
	}
	return 0
}

// AnalyseBlob measures the bounding box, area and perimeter of the blob
// with the given label in a labeled buffer. Every 4-connected edge to a
// pixel of a different value, or past the image border, counts as exposed;
// a pixel's exposed-edge count selects its perimeter weight. Errors when
// the label is absent.
func AnalyseBlob(labeled *GrayBuffer, blob uint8, weights PerimeterWeights) (BlobInfo, error) {
	if err := checkView(labeled, ViewLabeled); err != nil {
		return BlobInfo{}, err
	}
	minX, minY := labeled.width, labeled.height
	maxX, maxY := -1, -1
	count := 0
	perimeter := 0.0
	for y := 0; y < labeled.height; y++ {
		for x := 0; x < labeled.width; x++ {
			if labeled.GetXY(x, y) != blob {
				continue
			}
			count++
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
			edges := 0
			for _, d := range fourOffsets {
				nx, ny := x+d[0], y+d[1]
				if !labeled.In(nx, ny) || labeled.GetXY(nx, ny) != blob {
					edges++
				}
			}
			perimeter += weights.forEdges(edges)
		}
	}
	if count == 0 {
		return BlobInfo{}, errors.Errorf("no blob with label %d", blob)
	}
	return BlobInfo{
		Width:      maxX - minX + 1,
		Height:     maxY - minY + 1,
		PixelCount: count,
		Perimeter:  perimeter,
	}, nil
}

// CentroidFloat returns the blob centroid m10/m00, m01/m00 as a float
// point. Errors when the label is absent.
func CentroidFloat(labeled *GrayBuffer, blob uint8) (r2.Point, error) {
	if err := checkView(labeled, ViewLabeled); err != nil {
		return r2.Point{}, err
	}
	var m00, m10, m01 float64
	for y := 0; y < labeled.height; y++ {
		for x := 0; x < labeled.width; x++ {
			if labeled.GetXY(x, y) != blob {
				continue
			}
			m00++
			m10 += float64(x)
			m01 += float64(y)
		}
	}
	if m00 == 0 {
		return r2.Point{}, errors.Errorf("no blob with label %d", blob)
	}
	return r2.Point{X: m10 / m00, Y: m01 / m00}, nil
}

// Centroid returns the blob centroid rounded to the nearest pixel.
func Centroid(labeled *GrayBuffer, blob uint8) (image.Point, error) {
	c, err := CentroidFloat(labeled, blob)
	if err != nil {
		return image.Point{}, err
	}
	return image.Point{X: int(c.X + 0.5), Y: int(c.Y + 0.5)}, nil
}

// NormalizedCentralMoment computes the centroid-relative moment of order
// (p, q), normalized by m00^((p+q)/2 + 1). The zeroth moment is 1 and the
// first moments vanish by construction. Errors when the label is absent.
func NormalizedCentralMoment(labeled *GrayBuffer, blob uint8, p, q int) (float64, error) {
	if p == 0 && q == 0 {
		return 1, nil
	}
	if p+q == 1 {
		return 0, nil
	}
	c, err := CentroidFloat(labeled, blob)
	if err != nil {
		return 0, err
	}
	var m00, mu float64
	for y := 0; y < labeled.height; y++ {
		for x := 0; x < labeled.width; x++ {
			if labeled.GetXY(x, y) != blob {
				continue
			}
			m00++
			mu += math.Pow(float64(x)-c.X, float64(p)) * math.Pow(float64(y)-c.Y, float64(q))
		}
	}
	return mu / math.Pow(m00, float64(p+q)/2+1), nil
}
