package sobel

import "github.com/cwbudde/yuvsobel/internal/lanes"

// Output layouts.
//
// Full-frame: the grid is width x height and results land at their image
// coordinates. Afterwards every pixel with x <= StartX, x >= EndX-1,
// y <= StartY or y >= EndY-1 is overwritten with the pipeline's sentinel,
// which also covers everything outside the region.
//
// Cropped: the grid is Region.Width() x Region.Height() and image pixel
// (StartX+rx, StartY+ry) lands at (rx, ry). Afterwards the outermost row and
// column on every side are set to zero.
//
// Stores are clipped to the end of the destination row. A batch that runs
// past the row only carries lanes the border pass overwrites, so clipping
// changes nothing a caller can observe.

// Border values written by the full-frame layout. The two pipelines have
// always used different values and downstream consumers may depend on it.
const (
	FullSentinel    uint8 = 2
	QuarterSentinel uint8 = 0
)

type writer struct {
	grid     *Grid
	region   Region
	crop     bool
	sentinel uint8
}

// newWriter allocates the output grid for a normalized region.
func newWriter(r Region, width, height int, crop bool, sentinel uint8) *writer {
	w := &writer{region: r, crop: crop, sentinel: sentinel}
	if crop {
		w.grid = NewGrid(r.Width(), r.Height())
	} else {
		w.grid = NewGrid(width, height)
	}
	return w
}

// offset maps image coordinates to an index into Pix and the end of that row.
func (w *writer) offset(x, y int) (off, rowEnd int) {
	g := w.grid
	if w.crop {
		x -= w.region.StartX
		y -= w.region.StartY
	}
	return y*g.Width + x, (y + 1) * g.Width
}

// store writes a result batch whose lane 0 belongs at image position (x, y).
func (w *writer) store(v lanes.U8x16, x, y int) {
	off, rowEnd := w.offset(x, y)
	if off >= rowEnd {
		return
	}
	v.Store(w.grid.Pix[off:rowEnd])
}

// set writes a single value at image position (x, y).
func (w *writer) set(x, y int, v uint8) {
	off, _ := w.offset(x, y)
	w.grid.Pix[off] = v
}

// finish applies the border policy and returns the grid.
func (w *writer) finish() *Grid {
	if w.crop {
		blankCroppedBorder(w.grid)
	} else {
		blankFrameBorder(w.grid, w.region, w.sentinel)
	}
	return w.grid
}

// blankFrameBorder fills every pixel outside the region interior with
// sentinel. The interior is StartX < x < EndX-1, StartY < y < EndY-1.
func blankFrameBorder(g *Grid, r Region, sentinel uint8) {
	x0 := clampInt(r.StartX+1, 0, g.Width)
	x1 := clampInt(r.EndX-1, x0, g.Width)

	for y := 0; y < g.Height; y++ {
		row := g.Row(y)
		if y <= r.StartY || y >= r.EndY-1 {
			fill(row, sentinel)
			continue
		}
		fill(row[:x0], sentinel)
		fill(row[x1:], sentinel)
	}
}

// blankCroppedBorder zeroes the outermost ring of g.
func blankCroppedBorder(g *Grid) {
	if g.Width == 0 || g.Height == 0 {
		return
	}
	fill(g.Row(0), 0)
	fill(g.Row(g.Height-1), 0)
	for y := 1; y < g.Height-1; y++ {
		row := g.Row(y)
		row[0] = 0
		row[g.Width-1] = 0
	}
}

func fill(b []uint8, v uint8) {
	for i := range b {
		b[i] = v
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
