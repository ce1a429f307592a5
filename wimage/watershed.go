package wimage

// Watershed floods the image from its intensity minima, one height level at
// a time from minHeight to maxHeight. Pixels at or below the current level
// join the basin they touch; a pixel reachable from two distinct basins
// becomes a permanent watershed line instead of merging them; pixels that
// touch no basin at all spawn new ones, the same way LabelBlobs spawns
// labels. dst receives the basin label map (1..n, compacted) with watershed
// lines and never-flooded pixels at 0, and the basin count is returned.
// More than 254 simultaneous basins returns ErrLabelOverflow. src and dst
// must be distinct buffers.
func Watershed(src, dst *GrayBuffer, conn Connectivity, minHeight, maxHeight uint8) (int, error) {
	if err := checkSameSize(src, dst); err != nil {
		return 0, err
	}
	if err := checkDistinct(src, dst); err != nil {
		return 0, err
	}

	// labels holds 0 (unclaimed), cellUnlabeled (pending at the current
	// level) or a basin label; line pixels are tracked separately so basins
	// can never grow into them.
	labels := &cellGrid{w: src.width, h: src.height, cells: make([]uint8, len(src.data))}
	lines := make([]bool, len(src.data))
	nextLabel := 1

	// resolve decides a pending pixel from its labeled neighbors: exactly
	// one distinct basin extends it, two or more turn it into a line.
	resolve := func(x, y int) bool {
		if labels.at(x, y) != cellUnlabeled || lines[y*labels.w+x] {
			return false
		}
		var first uint8
		merge := false
		for _, d := range connOffsets(conn) {
			nx, ny := x+d[0], y+d[1]
			if !labels.in(nx, ny) || lines[ny*labels.w+nx] {
				continue
			}
			v := labels.at(nx, ny)
			if v == 0 || v == cellUnlabeled {
				continue
			}
			if first == 0 {
				first = v
			} else if v != first {
				merge = true
			}
		}
		switch {
		case merge:
			lines[y*labels.w+x] = true
			labels.set(x, y, 0)
			return true
		case first != 0:
			labels.set(x, y, first)
			return true
		}
		return false
	}

	relaxToFixedPoint := func() {
		changes := true
		for changes {
			changes = false
			for y := 0; y < labels.h; y++ {
				for x := 0; x < labels.w; x++ {
					changes = resolve(x, y) || changes
				}
			}
			for y := labels.h - 1; y >= 0; y-- {
				for x := labels.w - 1; x >= 0; x-- {
					changes = resolve(x, y) || changes
				}
			}
		}
	}

	for level := int(minHeight); level <= int(maxHeight); level++ {
		// include every still-unclaimed pixel at or below this level
		for i, v := range src.data {
			if int(v) <= level && labels.cells[i] == 0 && !lines[i] {
				labels.cells[i] = cellUnlabeled
			}
		}
		// extend existing basins first; any pixel still pending after that is
		// cut off from every basin, so it seeds a fresh one. Seeding one at a
		// time and reflooding keeps a connected plateau in a single basin.
		relaxToFixedPoint()
		for {
			seeded := false
			for i, v := range labels.cells {
				if v != cellUnlabeled || lines[i] {
					continue
				}
				if nextLabel > maxLabel {
					return 0, ErrLabelOverflow
				}
				labels.cells[i] = uint8(nextLabel)
				nextLabel++
				seeded = true
				break
			}
			if !seeded {
				break
			}
			relaxToFixedPoint()
		}
	}

	count := compactLabels(labels.cells)
	copy(dst.data, labels.cells)
	dst.View = ViewLabeled
	return count, nil
}
