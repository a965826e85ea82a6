package sobel

// Scalar reference implementation.
//
// Computes the same fixed-point Sobel as the lane pipeline one pixel at a
// time, reading luma straight out of the interleaved buffer. Only interior
// pixels (StartX < x < EndX, StartY < y < EndY) are computed; the border
// pass then produces the same grid as the vector path. Used as the fallback
// backend and as the oracle in conformance tests.

// lumaAt returns the luma sample the pipeline sees at destination (x, y).
// Quarter resolution keeps every second sample, so its byte step is 4.
type lumaAt func(x, y int) uint8

func fullScalar(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	rowBytes := 2 * width
	luma := func(x, y int) uint8 { return src[y*rowBytes+2*x] }
	return scalarPipeline(luma, r, width, height, dir, crop, FullSentinel)
}

func quarterScalar(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	rowBytes := 8 * width
	luma := func(x, y int) uint8 { return src[y*rowBytes+4*x] }
	return scalarPipeline(luma, r, width, height, dir, crop, QuarterSentinel)
}

func scalarPipeline(luma lumaAt, r Region, width, height int, dir Direction, crop bool, sentinel uint8) *Grid {
	r = r.Normalize()
	out := newWriter(r, width, height, crop, sentinel)

	for y := r.StartY + 1; y < r.EndY; y++ {
		for x := r.StartX + 1; x < r.EndX; x++ {
			out.set(x, y, PixelGradient(luma, x, y, dir))
		}
	}

	return out.finish()
}

// PixelGradient evaluates the fixed-point gradient at (x, y) for one pixel.
// luma must be valid for the 3x3 neighbourhood around (x, y).
func PixelGradient(luma func(x, y int) uint8, x, y int, dir Direction) uint8 {
	a0, a1, a2 := luma(x-1, y-1), luma(x, y-1), luma(x+1, y-1)
	c0, c2 := luma(x-1, y), luma(x+1, y)
	b0, b1, b2 := luma(x-1, y+1), luma(x, y+1), luma(x+1, y+1)

	var gx, gy uint8
	if dir.needsX() {
		gx = absDiff(a0>>2 + c0>>1 + b0>>2, a2>>2 + c2>>1 + b2>>2)
	}
	if dir.needsY() {
		gy = absDiff(a0>>2 + a1>>1 + a2>>2, b0>>2 + b1>>1 + b2>>2)
	}

	return Magnitude(gx, gy, dir)
}

// Magnitude combines one gradient pair the way the lane pipeline does:
// max(gx, gy) + min(gx, gy)>>2 saturating for Combined, gx for Horizontal,
// gy otherwise.
func Magnitude(gx, gy uint8, dir Direction) uint8 {
	switch dir {
	case Combined:
		s := uint16(max(gx, gy)) + uint16(min(gx, gy)>>2)
		if s > 0xff {
			s = 0xff
		}
		return uint8(s)
	case Horizontal:
		return gx
	default:
		return gy
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
