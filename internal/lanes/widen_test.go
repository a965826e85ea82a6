package lanes

import (
	"fmt"
	"math/rand"
	"testing"
)

// TestShiftRight_MatchesNativeByteShift checks the widen/shift/narrow
// emulation against a plain per-byte shift for every byte value.
func TestShiftRight_MatchesNativeByteShift(t *testing.T) {
	for bits := uint(0); bits <= 8; bits++ {
		t.Run(fmt.Sprintf("bits=%d", bits), func(t *testing.T) {
			for base := 0; base < 256; base += N {
				v := iota16(uint8(base))
				got := ShiftRight(v, bits)
				for i := 0; i < N; i++ {
					want := v[i] >> bits
					if got[i] != want {
						t.Fatalf("ShiftRight(%d, %d) = %d, want %d", v[i], bits, got[i], want)
					}
				}
			}
		})
	}
}

func TestPromoteDemote_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 100; iter++ {
		v := randomVec(rng)
		if got := DemoteTwo(PromoteLower(v), PromoteUpper(v)); got != v {
			t.Fatalf("iter %d: round trip changed %v into %v", iter, v, got)
		}
	}
}

func TestDemoteTwo_Saturates(t *testing.T) {
	lo := U16x8{0, 255, 256, 1000}
	hi := U16x8{65535, 3}
	got := DemoteTwo(lo, hi)
	want := U8x16{0, 255, 255, 255, 0, 0, 0, 0, 255, 3}
	if got != want {
		t.Errorf("DemoteTwo = %v, want %v", got, want)
	}
}

func BenchmarkShiftRight(b *testing.B) {
	v := iota16(3)
	for i := 0; i < b.N; i++ {
		v = ShiftRight(v, 1)
		v[0] |= 0x80
	}
	_ = v
}
