package lanes

// Fixed-width byte vectors for the gradient kernels.
//
// U8x16 mirrors a 128-bit register holding 16 unsigned byte lanes (the
// SSE/NEON register shape the kernels were designed around). This is the
// portable definition of each step; the assembly row kernels in package
// sobel perform the same steps on hardware registers and are tested against
// it. All operations take and return values, so a vector never escapes to
// the heap.
//
// The operation set follows the usual portable-SIMD vocabulary:
//   - Load / Store:                   unaligned 16-byte memory access
//   - InterleaveLower / Upper:        byte unpack (punpcklbw / punpckhbw, zip1 / zip2)
//   - SlideDown:                      whole-register byte shift (psrldq, ext)
//   - SaturatedAdd / SaturatedSub:    paddusb / psubusb
//   - Min / Max:                      pminub / pmaxub
//   - ShiftRight:                     per-lane logical shift, emulated via U16x8

// N is the number of byte lanes in a U8x16.
const N = 16

// U8x16 holds 16 unsigned byte lanes. Lane 0 is the lowest address.
type U8x16 [N]uint8

// U16x8 holds 8 unsigned 16-bit lanes, used as the widened form of half a U8x16.
type U16x8 [N / 2]uint16

// Load reads 16 bytes starting at src[off].
//
// Lanes that would fall past the end of src are zero. This is the Go form of
// an unaligned load over a padded buffer: callers that rely on reading a
// batch past the last useful column get deterministic zeros instead of
// whatever the padding held.
func Load(src []byte, off int) U8x16 {
	var r U8x16
	if off+N <= len(src) {
		copy(r[:], src[off:off+N])
		return r
	}
	if off < len(src) {
		copy(r[:], src[off:])
	}
	return r
}

// Store writes the vector to dst, truncated to len(dst).
// It returns the number of lanes written.
func (v U8x16) Store(dst []byte) int {
	return copy(dst, v[:])
}

// InterleaveLower interleaves the lower halves of a and b.
// [a0..a15], [b0..b15] -> [a0,b0,a1,b1,...,a7,b7]
func InterleaveLower(a, b U8x16) U8x16 {
	var r U8x16
	for i := 0; i < N/2; i++ {
		r[2*i] = a[i]
		r[2*i+1] = b[i]
	}
	return r
}

// InterleaveUpper interleaves the upper halves of a and b.
// [a0..a15], [b0..b15] -> [a8,b8,a9,b9,...,a15,b15]
func InterleaveUpper(a, b U8x16) U8x16 {
	var r U8x16
	for i := 0; i < N/2; i++ {
		r[2*i] = a[N/2+i]
		r[2*i+1] = b[N/2+i]
	}
	return r
}

// SlideDown moves every lane n positions toward lane 0 and fills the
// vacated upper lanes with zero.
// [1,2,3,...,16] with n=2 -> [3,4,...,16,0,0]
func SlideDown(v U8x16, n int) U8x16 {
	var r U8x16
	if n <= 0 {
		return v
	}
	if n >= N {
		return r
	}
	copy(r[:N-n], v[n:])
	return r
}

// SaturatedAdd adds lane-wise, clamping at 255.
func SaturatedAdd(a, b U8x16) U8x16 {
	var r U8x16
	for i := range r {
		s := uint16(a[i]) + uint16(b[i])
		if s > 0xff {
			s = 0xff
		}
		r[i] = uint8(s)
	}
	return r
}

// SaturatedSub subtracts lane-wise, clamping at 0.
func SaturatedSub(a, b U8x16) U8x16 {
	var r U8x16
	for i := range r {
		if a[i] > b[i] {
			r[i] = a[i] - b[i]
		}
	}
	return r
}

// Min returns the lane-wise minimum.
func Min(a, b U8x16) U8x16 {
	var r U8x16
	for i := range r {
		r[i] = min(a[i], b[i])
	}
	return r
}

// Max returns the lane-wise maximum.
func Max(a, b U8x16) U8x16 {
	var r U8x16
	for i := range r {
		r[i] = max(a[i], b[i])
	}
	return r
}

// AbsDiff returns |a-b| per lane, computed as max(a,b) -sat min(a,b).
func AbsDiff(a, b U8x16) U8x16 {
	return SaturatedSub(Max(a, b), Min(a, b))
}
