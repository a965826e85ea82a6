package lanes

// Byte lanes have no native logical right shift on the 128-bit integer
// instruction sets the kernels target (SSE up to SSSE3 only shifts 16-bit and
// wider lanes). ShiftRight therefore widens each half to 16-bit lanes, shifts
// there and narrows back with unsigned saturation, exactly as the hardware
// sequence punpcklbw/punpckhbw + psrlw + packuswb does.

// PromoteLower zero-extends lanes 0..7 to 16 bits.
func PromoteLower(v U8x16) U16x8 {
	var r U16x8
	for i := range r {
		r[i] = uint16(v[i])
	}
	return r
}

// PromoteUpper zero-extends lanes 8..15 to 16 bits.
func PromoteUpper(v U8x16) U16x8 {
	var r U16x8
	for i := range r {
		r[i] = uint16(v[N/2+i])
	}
	return r
}

// ShiftRight16 shifts every 16-bit lane right by bits, shifting in zeros.
func ShiftRight16(v U16x8, bits uint) U16x8 {
	var r U16x8
	for i := range r {
		r[i] = v[i] >> bits
	}
	return r
}

// DemoteTwo narrows lo and hi to bytes with unsigned saturation and
// concatenates them: lanes 0..7 come from lo, 8..15 from hi.
func DemoteTwo(lo, hi U16x8) U8x16 {
	var r U8x16
	for i := 0; i < N/2; i++ {
		r[i] = saturateU8(lo[i])
		r[N/2+i] = saturateU8(hi[i])
	}
	return r
}

func saturateU8(v uint16) uint8 {
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}

// ShiftRight performs a per-lane logical right shift of the byte lanes.
func ShiftRight(v U8x16, bits uint) U8x16 {
	lo := ShiftRight16(PromoteLower(v), bits)
	hi := ShiftRight16(PromoteUpper(v), bits)
	return DemoteTwo(lo, hi)
}
