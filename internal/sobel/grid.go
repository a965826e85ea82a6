package sobel

import "image"

// Grid is the owned output of a pipeline run: Width*Height gradient values
// stored row-major in Pix. The pipelines keep no reference to it.
type Grid struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewGrid allocates a zeroed width x height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
}

// At returns the value at (x, y). It panics if the position is outside the grid.
func (g *Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores v at (x, y).
func (g *Grid) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Row returns row y as a slice aliasing Pix.
func (g *Grid) Row(y int) []uint8 {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// Gray wraps the grid as an *image.Gray without copying.
func (g *Grid) Gray() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// Equal reports whether two grids have the same shape and contents.
func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height || len(g.Pix) != len(o.Pix) {
		return false
	}
	for i := range g.Pix {
		if g.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// GridStats summarises a gradient grid.
type GridStats struct {
	Max            uint8   `json:"max"`
	Mean           float64 `json:"mean"`
	AboveThreshold int     `json:"aboveThreshold"`
	Threshold      uint8   `json:"threshold"`
}

// Stats computes the maximum, mean and the number of values strictly above
// threshold over the whole grid.
func (g *Grid) Stats(threshold uint8) GridStats {
	s := GridStats{Threshold: threshold}
	if len(g.Pix) == 0 {
		return s
	}

	var sum uint64
	for _, v := range g.Pix {
		sum += uint64(v)
		if v > s.Max {
			s.Max = v
		}
		if v > threshold {
			s.AboveThreshold++
		}
	}
	s.Mean = float64(sum) / float64(len(g.Pix))
	return s
}
