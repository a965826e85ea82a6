package sobel

import "github.com/cwbudde/yuvsobel/internal/lanes"

// Gradients on 8-bit lanes.
//
// For a 3x3 neighbourhood
//
//	a0 | a1 | a2
//	c0 | xx | c2
//	b0 | b1 | b2
//
// the kernels compute
//
//	gx = | (a0 + 2*c0 + b0)/4 - (a2 + 2*c2 + b2)/4 |
//	gy = | (a0 + 2*a1 + a2)/4 - (b0 + 2*b1 + b2)/4 |
//
// The division is applied to every operand before summing (a0>>2, c0>>1,
// ...). The largest possible partial sum is 63+127+63 = 253, so the
// saturating adds never clip and the result is the Sobel response scaled by
// 1/4 with per-operand truncation.
//
// Lane p of a result is centred on lane p+1 of the inputs. Lanes 14 and 15
// see zeros shifted in from SlideDown and carry no valid value.

// gradients computes gx and/or gy for one batch. Components that dir does
// not need are left zero.
func gradients(above, center, below lanes.U8x16, dir Direction) (gx, gy lanes.U8x16) {
	a0 := lanes.ShiftRight(above, 2)
	a2 := lanes.ShiftRight(lanes.SlideDown(above, 2), 2)
	b0 := lanes.ShiftRight(below, 2)
	b2 := lanes.ShiftRight(lanes.SlideDown(below, 2), 2)

	if dir.needsX() {
		c0 := lanes.ShiftRight(center, 1)
		c2 := lanes.ShiftRight(lanes.SlideDown(center, 2), 1)

		pos := lanes.SaturatedAdd(a0, lanes.SaturatedAdd(b0, c0))
		neg := lanes.SaturatedAdd(a2, lanes.SaturatedAdd(b2, c2))
		gx = lanes.AbsDiff(pos, neg)
	}

	if dir.needsY() {
		a1 := lanes.ShiftRight(lanes.SlideDown(above, 1), 1)
		b1 := lanes.ShiftRight(lanes.SlideDown(below, 1), 1)

		pos := lanes.SaturatedAdd(a0, lanes.SaturatedAdd(a1, a2))
		neg := lanes.SaturatedAdd(b1, lanes.SaturatedAdd(b0, b2))
		gy = lanes.AbsDiff(pos, neg)
	}

	return gx, gy
}

// magnitude reduces a gradient pair to the value emitted for dir.
//
// Combined uses the alpha-max-plus-beta-min estimate of sqrt(gx²+gy²) with
// alpha = 1 and beta = 1/4: max + min>>2, saturating.
func magnitude(gx, gy lanes.U8x16, dir Direction) lanes.U8x16 {
	switch dir {
	case Combined:
		hi := lanes.Max(gx, gy)
		lo := lanes.ShiftRight(lanes.Min(gx, gy), 2)
		return lanes.SaturatedAdd(lo, hi)
	case Horizontal:
		return gx
	default:
		return gy
	}
}

// batch runs gradient and magnitude for three vertically aligned luma batches.
func batch(above, center, below lanes.U8x16, dir Direction) lanes.U8x16 {
	gx, gy := gradients(above, center, below, dir)
	return magnitude(gx, gy, dir)
}
