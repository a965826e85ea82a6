package sobel

import "github.com/cwbudde/yuvsobel/internal/lanes"

// Luma extraction from packed YUYV 4:2:2.
//
// The byte stream is Y0 U0 Y1 V0 Y2 U1 Y3 V1 ..., so luma sits on every even
// byte. Two 16-byte loads (lo = bytes 0..15, hi = bytes 16..31) are separated
// by repeated byte unpacking:
//
//	unpack lo,hi  -> Y0 Y8  U0 U4 Y1 Y9  V0 V4 ... | Y4 Y12 U2 U6 ...
//	unpack again  -> Y0 Y4 Y8 Y12 U0 U2 U4 U6 ...  | Y2 Y6 Y10 Y14 ...
//	unpack again  -> Y0 Y2 Y4 ... Y14 U0 U1 ...    | Y1 Y3 ... Y15 V0 V1 ...
//	unpack lower  -> Y0 Y1 Y2 ... Y15
//
// Each round halves the distance between bytes of equal parity; after the
// last one the lower register holds the even-indexed bytes of lo||hi in
// order. The matching upper half (the chroma) is never computed.

// evenBytes returns bytes 0, 2, 4, ..., 30 of the 32-byte sequence lo||hi.
func evenBytes(lo, hi lanes.U8x16) lanes.U8x16 {
	a := lanes.InterleaveLower(lo, hi)
	b := lanes.InterleaveUpper(lo, hi)

	c := lanes.InterleaveLower(a, b)
	d := lanes.InterleaveUpper(a, b)

	a = lanes.InterleaveLower(c, d)
	b = lanes.InterleaveUpper(c, d)

	return lanes.InterleaveLower(a, b)
}

// lumaFull returns the 16 consecutive luma samples whose bytes start at
// src[off]. It touches src[off:off+32].
func lumaFull(src []byte, off int) lanes.U8x16 {
	return evenBytes(lanes.Load(src, off), lanes.Load(src, off+lanes.N))
}

// lumaQuarter returns every second luma sample of the 32 consecutive samples
// whose bytes start at src[off]. Both 32-byte halves are separated first,
// then one more even-byte pass keeps samples 0, 2, ..., 30. It touches
// src[off:off+64].
func lumaQuarter(src []byte, off int) lanes.U8x16 {
	first := lumaFull(src, off)
	second := lumaFull(src, off+2*lanes.N)
	return evenBytes(first, second)
}
