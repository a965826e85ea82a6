package sobel

import "github.com/cwbudde/yuvsobel/internal/lanes"

// pass describes how one resolution walks its source.
type pass struct {
	sentinel  uint8
	colBytes  int // source bytes per destination column
	rowBytes  int // source bytes per destination row, per unit of width
	loadBytes int // source bytes one batch reads from each row
	luma      func(src []byte, off int) lanes.U8x16

	// Quarter batches may start on the region's last column. The extra
	// batch only stores onto border columns.
	lastInclusive bool
}

var (
	fullPass    = pass{FullSentinel, 2, 2, 2 * lanes.N, lumaFull, false}
	quarterPass = pass{QuarterSentinel, 4, 8, 4 * lanes.N, lumaQuarter, true}
)

// step is the source distance between two batches of a row.
func (p pass) step() int { return BatchStride * p.colBytes }

// batches returns how many batches cover one row of the normalized region r.
func (p pass) batches(r Region) int {
	span := r.EndX - (r.StartX + 1)
	if p.lastInclusive {
		span++
	}
	if span <= 0 {
		return 0
	}
	return (span + BatchStride - 1) / BatchStride
}

// rowFunc runs n batches of one destination row. Batch k reads
// src[above+k*step:], src[center+k*step:] and src[below+k*step:] and writes
// BatchLanes results to dst[k*BatchStride:]. Callers guarantee that every
// access is in range and that dir is valid.
type rowFunc func(dst, src []byte, above, center, below, n int, dir Direction)

// walk runs p over every interior row of r.
//
// With a row kernel, the leading batches whose loads fit in src and whose
// stores fit in the destination row go through it. The remaining batches,
// or all of them when row is nil, take the lane path, which reads zeros past
// the end of src and clips stores at the row end. Both produce the same
// values, so the split point is not observable.
func walk(p pass, row rowFunc, src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	r = r.Normalize()
	out := newWriter(r, width, height, crop, p.sentinel)
	if !dir.Valid() {
		row = nil
	}

	rowBytes := p.rowBytes * width
	step := p.step()
	total := p.batches(r)
	first := p.colBytes * r.StartX

	above := r.StartY * rowBytes
	for y := r.StartY + 1; y < r.EndY; y++ {
		center := above + rowBytes
		below := center + rowBytes

		k := 0
		if row != nil && total > 0 {
			off, rowEnd := out.offset(r.StartX+1, y)
			n := min(total,
				fitting(len(src)-(below+first), p.loadBytes, step),
				fitting(rowEnd-off, BatchLanes, BatchStride))
			if n > 0 {
				row(out.grid.Pix[off:rowEnd], src, above+first, center+first, below+first, n, dir)
				k = n
			}
		}

		for ; k < total; k++ {
			col := first + k*step
			res := batch(
				p.luma(src, above+col),
				p.luma(src, center+col),
				p.luma(src, below+col),
				dir,
			)
			out.store(res, r.StartX+1+k*BatchStride, y)
		}

		above += rowBytes
	}

	return out.finish()
}

// fitting counts the k >= 0 with k*step+size <= avail.
func fitting(avail, size, step int) int {
	if avail < size {
		return 0
	}
	return (avail-size)/step + 1
}
