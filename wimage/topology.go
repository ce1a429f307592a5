package wimage

import (
	"github.com/pkg/errors"
)

// Connectivity is the neighbor relation used by the topology operators.
type Connectivity int

const (
	// Four considers the axis-aligned neighbors only.
	Four Connectivity = 4
	// Eight also considers the diagonal neighbors.
	Eight Connectivity = 8
)

// ErrLabelOverflow reports that an image contains more connected components
// (or watershed basins) than the 254 labels an 8-bit label map can hold.
// It is distinct from a zero result so callers can tell "too many" from
// "none".
var ErrLabelOverflow = errors.New("more than 254 labels required")

const (
	cellBackground = 0
	cellForeground = 1
	cellFlagged    = 2
	cellUnlabeled  = 255
	maxLabel       = 254
)

// cellGrid is the auxiliary state array the flood and labeling passes
// operate on, keeping algorithm bookkeeping out of the pixel buffer so no
// transient marker can leak into operator output.
type cellGrid struct {
	w, h  int
	cells []uint8
}

func newCellGrid(src *GrayBuffer) *cellGrid {
	g := &cellGrid{w: src.width, h: src.height, cells: make([]uint8, len(src.data))}
	copy(g.cells, src.data)
	return g
}

func (g *cellGrid) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

func (g *cellGrid) at(x, y int) uint8 {
	return g.cells[y*g.w+x]
}

func (g *cellGrid) set(x, y int, v uint8) {
	g.cells[y*g.w+x] = v
}

var (
	fourOffsets  = [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	eightOffsets = [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

func connOffsets(conn Connectivity) [][2]int {
	if conn == Eight {
		return eightOffsets
	}
	return fourOffsets
}

// neighbourCount counts in-bounds neighbors of (x, y) holding value.
func (g *cellGrid) neighbourCount(x, y int, value uint8, conn Connectivity) int {
	count := 0
	for _, d := range connOffsets(conn) {
		if g.in(x+d[0], y+d[1]) && g.at(x+d[0], y+d[1]) == value {
			count++
		}
	}
	return count
}

// minNeighbourLabel returns the lowest label (1..254) among the neighbors
// of (x, y), or 0 when none carries a label.
func (g *cellGrid) minNeighbourLabel(x, y int, conn Connectivity) uint8 {
	best := uint8(0)
	for _, d := range connOffsets(conn) {
		if !g.in(x+d[0], y+d[1]) {
			continue
		}
		v := g.at(x+d[0], y+d[1])
		if v == 0 || v == cellUnlabeled {
			continue
		}
		if best == 0 || v < best {
			best = v
		}
	}
	return best
}

// markBorder flags every border cell holding from with the flag value and
// reports whether any was flagged.
func (g *cellGrid) markBorder(from, flag uint8) bool {
	marked := false
	mark := func(x, y int) {
		if g.at(x, y) == from {
			g.set(x, y, flag)
			marked = true
		}
	}
	for x := 0; x < g.w; x++ {
		mark(x, 0)
		mark(x, g.h-1)
	}
	for y := 1; y < g.h-1; y++ {
		mark(0, y)
		mark(g.w-1, y)
	}
	return marked
}

// floodInterior relaxes the flag value through interior cells holding from:
// a bidirectional raster scan repeated until a full forward+backward pass
// changes nothing. Border cells are seeded beforehand and never change.
func (g *cellGrid) floodInterior(from, flag uint8, conn Connectivity) {
	changes := true
	for changes {
		changes = false
		for y := 1; y < g.h-1; y++ {
			for x := 1; x < g.w-1; x++ {
				if g.at(x, y) == from && g.neighbourCount(x, y, flag, conn) > 0 {
					g.set(x, y, flag)
					changes = true
				}
			}
		}
		for y := g.h - 2; y >= 1; y-- {
			for x := g.w - 2; x >= 1; x-- {
				if g.at(x, y) == from && g.neighbourCount(x, y, flag, conn) > 0 {
					g.set(x, y, flag)
					changes = true
				}
			}
		}
	}
}

// RemoveBorderBlobs deletes every blob touching any of the four image
// borders: border foreground pixels are flagged, the flag floods through
// connected foreground, and flagged pixels become background. src must be
// binary; src and dst may alias.
func RemoveBorderBlobs(src, dst *GrayBuffer, conn Connectivity) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if err := checkView(src, ViewBinary); err != nil {
		return err
	}
	g := newCellGrid(src)
	g.markBorder(cellForeground, cellFlagged)
	g.floodInterior(cellForeground, cellFlagged, conn)
	for i, v := range g.cells {
		if v == cellFlagged {
			dst.data[i] = 0
		} else {
			dst.data[i] = v
		}
	}
	dst.View = ViewBinary
	return nil
}

// FillHoles promotes interior background regions to foreground: border
// background pixels are flagged, the flag floods through connected
// background, and any background pixel the flood never reached is a hole
// and becomes foreground. When no border pixel is background at all there
// is no outside to flood from, and the whole image fills to foreground.
// src must be binary; src and dst may alias.
func FillHoles(src, dst *GrayBuffer, conn Connectivity) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if err := checkView(src, ViewBinary); err != nil {
		return err
	}
	g := newCellGrid(src)
	if !g.markBorder(cellBackground, cellFlagged) {
		dst.Fill(1)
		dst.View = ViewBinary
		return nil
	}
	g.floodInterior(cellBackground, cellFlagged, conn)
	for i, v := range g.cells {
		switch v {
		case cellBackground:
			dst.data[i] = 1
		case cellFlagged:
			dst.data[i] = 0
		default:
			dst.data[i] = v
		}
	}
	dst.View = ViewBinary
	return nil
}

// LabelBlobs assigns a contiguous label 1..n to every connected foreground
// component and returns n. Each unlabeled pixel adopts the lowest label
// among its neighbors, or spawns a fresh label when no neighbor has one
// yet; already-labeled pixels keep relabeling downward until the
// bidirectional scan reaches a fixed point, so every component converges to
// its minimum label. Labels are then compacted to close the gaps left by
// merged components. Returns ErrLabelOverflow when more than 254
// intermediate labels are needed. src must be binary; src and dst may
// alias.
func LabelBlobs(src, dst *GrayBuffer, conn Connectivity) (int, error) {
	if err := checkSameSize(src, dst); err != nil {
		return 0, err
	}
	if err := checkView(src, ViewBinary); err != nil {
		return 0, err
	}
	g := newCellGrid(src)
	for i, v := range g.cells {
		if v == cellForeground {
			g.cells[i] = cellUnlabeled
		}
	}

	nextLabel := 1
	relax := func(x, y int) (bool, error) {
		v := g.at(x, y)
		if v == cellBackground {
			return false, nil
		}
		min := g.minNeighbourLabel(x, y, conn)
		if v == cellUnlabeled {
			if min == 0 {
				if nextLabel > maxLabel {
					return false, ErrLabelOverflow
				}
				g.set(x, y, uint8(nextLabel))
				nextLabel++
				return true, nil
			}
			g.set(x, y, min)
			return true, nil
		}
		if min != 0 && min < v {
			g.set(x, y, min)
			return true, nil
		}
		return false, nil
	}

	changes := true
	for changes {
		changes = false
		for y := 0; y < g.h; y++ {
			for x := 0; x < g.w; x++ {
				changed, err := relax(x, y)
				if err != nil {
					return 0, err
				}
				changes = changes || changed
			}
		}
		for y := g.h - 1; y >= 0; y-- {
			for x := g.w - 1; x >= 0; x-- {
				changed, err := relax(x, y)
				if err != nil {
					return 0, err
				}
				changes = changes || changed
			}
		}
	}

	count := compactLabels(g.cells)
	copy(dst.data, g.cells)
	dst.View = ViewLabeled
	return count, nil
}

// compactLabels remaps the labels present in cells onto 1..n with no gaps,
// preserving order, and returns n.
func compactLabels(cells []uint8) int {
	var used [256]bool
	for _, v := range cells {
		if v != 0 {
			used[v] = true
		}
	}
	var remap [256]uint8
	next := uint8(0)
	for i := 1; i <= maxLabel; i++ {
		if used[i] {
			next++
			remap[i] = next
		}
	}
	for i, v := range cells {
		if v != 0 {
			cells[i] = remap[v]
		}
	}
	return int(next)
}

// BinaryEdgeDetect keeps only the boundary pixels of each blob: foreground
// pixels with no background neighbor are interior and become background, as
// do isolated foreground pixels with no foreground neighbor at all. src
// must be binary; src and dst must be distinct buffers.
func BinaryEdgeDetect(src, dst *GrayBuffer, conn Connectivity) error {
	if err := checkSameSize(src, dst); err != nil {
		return err
	}
	if err := checkDistinct(src, dst); err != nil {
		return err
	}
	if err := checkView(src, ViewBinary); err != nil {
		return err
	}
	g := &cellGrid{w: src.width, h: src.height, cells: src.data}
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			if src.GetXY(x, y) != cellForeground {
				dst.SetXY(x, y, 0)
				continue
			}
			fg := g.neighbourCount(x, y, cellForeground, conn)
			bg := g.neighbourCount(x, y, cellBackground, conn)
			if fg == 0 || bg == 0 {
				dst.SetXY(x, y, 0)
			} else {
				dst.SetXY(x, y, 1)
			}
		}
	}
	dst.View = ViewBinary
	return nil
}
