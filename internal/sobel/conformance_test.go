package sobel

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"
)

// Every backend the host supports vs the scalar reference. They must agree
// on every pixel, border included, for any valid region.

func TestConformance_Full(t *testing.T) {
	sizes := []struct{ w, h int }{
		{16, 3},
		{17, 5},
		{30, 4},
		{44, 6},
		{64, 48},
		{100, 37},
		{640, 8},
	}

	for _, b := range Available() {
		for _, sz := range sizes {
			t.Run(fmt.Sprintf("%s/%dx%d", b, sz.w, sz.h), func(t *testing.T) {
				src := randomLuma(sz.w, sz.h, int64(sz.w+sz.h)).yuyv(7)
				rng := rand.New(rand.NewSource(int64(sz.w * sz.h)))

				regions := []Region{FrameRegion(sz.w, sz.h)}
				for i := 0; i < 20; i++ {
					regions = append(regions, randomRegion(rng, sz.w, sz.h))
				}

				for _, r := range regions {
					for _, dir := range allDirections {
						for _, crop := range []bool{false, true} {
							ok, at, err := CompareBackends(b, src, r, sz.w, sz.h, dir, crop, false)
							if err != nil {
								t.Fatal(err)
							}
							if !ok {
								t.Fatalf("region %v dir %s crop %v: first mismatch at index %d", r, dir, crop, at)
							}
						}
					}
				}
			})
		}
	}
}

func TestConformance_Quarter(t *testing.T) {
	sizes := []struct{ w, h int }{
		{16, 3},
		{33, 9},
		{58, 5},
		{64, 24},
		{320, 6},
	}

	for _, b := range Available() {
		for _, sz := range sizes {
			t.Run(fmt.Sprintf("%s/%dx%d", b, sz.w, sz.h), func(t *testing.T) {
				src := randomLuma(2*sz.w, 2*sz.h, int64(sz.w-sz.h)).yuyv(8)
				rng := rand.New(rand.NewSource(int64(sz.w + 3*sz.h)))

				regions := []Region{FrameRegion(sz.w, sz.h)}
				for i := 0; i < 20; i++ {
					regions = append(regions, randomRegion(rng, sz.w, sz.h))
				}

				for _, r := range regions {
					for _, dir := range allDirections {
						for _, crop := range []bool{false, true} {
							ok, at, err := CompareBackends(b, src, r, sz.w, sz.h, dir, crop, true)
							if err != nil {
								t.Fatal(err)
							}
							if !ok {
								t.Fatalf("region %v dir %s crop %v: first mismatch at index %d", r, dir, crop, at)
							}
						}
					}
				}
			})
		}
	}
}

// randomRegion returns a region inside width x height with corners in
// random order.
func randomRegion(rng *rand.Rand, width, height int) Region {
	return Region{
		StartX: rng.Intn(width),
		StartY: rng.Intn(height),
		EndX:   rng.Intn(width),
		EndY:   rng.Intn(height),
	}
}

func TestUseBackend(t *testing.T) {
	prev := ActiveBackend
	defer UseBackend(prev)

	const w, h = 48, 20
	src := randomLuma(w, h, 71).yuyv(72)

	if err := UseBackend(BackendScalar); err != nil {
		t.Fatalf("UseBackend(scalar): %v", err)
	}
	scalar := FullFrame(src, w, h, Combined)
	if ActiveBackend != BackendScalar {
		t.Errorf("ActiveBackend = %s, want scalar", ActiveBackend)
	}

	for _, b := range Available() {
		if err := UseBackend(b); err != nil {
			t.Fatalf("UseBackend(%s): %v", b, err)
		}
		if got := FullFrame(src, w, h, Combined); !got.Equal(scalar) {
			t.Errorf("%s disagrees with scalar through the public entry point", b)
		}
	}

	if err := UseBackend(Backend(9)); err == nil {
		t.Error("UseBackend(9) succeeded, want error")
	}
}

func TestUseBackend_Unsupported(t *testing.T) {
	prev := ActiveBackend
	defer UseBackend(prev)

	supported := map[Backend]bool{}
	for _, b := range Available() {
		supported[b] = true
	}
	for _, b := range []Backend{BackendSSE2, BackendAVX2, BackendNEON} {
		if supported[b] {
			continue
		}
		if err := UseBackend(b); err == nil {
			t.Errorf("UseBackend(%s) succeeded on a host without it", b)
		}
		if ActiveBackend != prev {
			t.Errorf("failed switch changed ActiveBackend to %s", ActiveBackend)
		}
	}
}

func TestBest(t *testing.T) {
	best := Best()
	if avail := Available(); avail[0] != best {
		t.Errorf("Best() = %s, Available()[0] = %s", best, avail[0])
	}
	if best == BackendLanes {
		t.Error("Best() picked the portable lane pipeline over scalar")
	}
	if len(natives) == 0 && best != BackendScalar {
		t.Errorf("Best() = %s without native kernels, want scalar", best)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"scalar", BackendScalar},
		{"lanes", BackendLanes},
		{"SSE2", BackendSSE2},
		{"avx2", BackendAVX2},
		{"neon", BackendNEON},
		{"auto", Best()},
		{" simd ", Best()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseBackend(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
			}
		})
	}
	if _, err := ParseBackend("gpu"); err == nil {
		t.Error("ParseBackend(gpu) succeeded")
	}
}

func TestUnpaddedSource(t *testing.T) {
	// The last batch of every row reads past the end of the frame; the
	// source has no padding at all.
	const w, h = 30, 10
	src := randomLuma(w, h, 81).yuyv(82)
	if len(src) != 2*w*h {
		t.Fatalf("unexpected source length %d", len(src))
	}

	for _, b := range Available() {
		for _, dir := range allDirections {
			ok, at, err := CompareBackends(b, src, FrameRegion(w, h), w, h, dir, false, false)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Errorf("%s/%s: mismatch at %d", b, dir, at)
			}
		}
	}
}

func TestNativeSplit(t *testing.T) {
	// Region widths chosen so a row has one, two, three and many batches,
	// with sources cut right behind the last row, and a source that starts
	// at an odd address.
	for _, k := range natives {
		for _, w := range []int{16, 29, 30, 43, 44, 57, 71, 200} {
			t.Run(fmt.Sprintf("%s/w=%d", k.backend, w), func(t *testing.T) {
				const h = 7
				frame := randomLuma(w, h, int64(w)).yuyv(3)
				shifted := make([]byte, len(frame)+1)
				copy(shifted[1:], frame)

				for _, src := range [][]byte{frame, shifted[1:]} {
					for _, dir := range allDirections {
						got := k.fullKernel()(src, FrameRegion(w, h), w, h, dir, false)
						want := fullScalar(src, FrameRegion(w, h), w, h, dir, false)
						if !got.Equal(want) {
							t.Fatalf("full %s differs from scalar", dir)
						}
					}
				}

				quarterSrc := randomLuma(2*w, 2*h, int64(w)+1).yuyv(4)
				for _, dir := range allDirections {
					for _, crop := range []bool{false, true} {
						got := k.quarterKernel()(quarterSrc, FrameRegion(w, h), w, h, dir, crop)
						want := quarterScalar(quarterSrc, FrameRegion(w, h), w, h, dir, crop)
						if !got.Equal(want) {
							t.Fatalf("quarter %s crop %v differs from scalar", dir, crop)
						}
					}
				}
			})
		}
	}
}

func TestInvalidDirectionSkipsNativeKernel(t *testing.T) {
	const w, h = 64, 6
	src := randomLuma(w, h, 91).yuyv(92)
	bad := Direction(7)
	want := fullLanes(src, FrameRegion(w, h), w, h, bad, false)
	for _, k := range natives {
		if got := k.fullKernel()(src, FrameRegion(w, h), w, h, bad, false); !got.Equal(want) {
			t.Errorf("%s: invalid direction differs from the lane pipeline", k.backend)
		}
	}
}

func TestFitting(t *testing.T) {
	tests := []struct {
		avail, size, step, want int
	}{
		{-5, 32, 28, 0},
		{31, 32, 28, 0},
		{32, 32, 28, 1},
		{59, 32, 28, 1},
		{60, 32, 28, 2},
		{16, 16, 14, 1},
		{30, 16, 14, 2},
	}
	for _, tt := range tests {
		if got := fitting(tt.avail, tt.size, tt.step); got != tt.want {
			t.Errorf("fitting(%d, %d, %d) = %d, want %d", tt.avail, tt.size, tt.step, got, tt.want)
		}
	}
}

// TestBestBackendNotSlowerThanScalar times the selected backend against the
// scalar reference on a VGA frame, best of several rounds each.
func TestBestBackendNotSlowerThanScalar(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	if Best() == BackendScalar {
		t.Skip("no native kernel on this host")
	}

	const w, h = 640, 480
	src := randomLuma(w, h, 5).yuyv(6)
	fast, _, err := kernelsFor(Best())
	if err != nil {
		t.Fatal(err)
	}

	measure := func(fn kernelFunc) time.Duration {
		best := time.Duration(math.MaxInt64)
		for round := 0; round < 5; round++ {
			start := time.Now()
			for i := 0; i < 10; i++ {
				fn(src, FrameRegion(w, h), w, h, Combined, false)
			}
			best = min(best, time.Since(start))
		}
		return best / 10
	}

	vec := measure(fast)
	scalar := measure(fullScalar)
	t.Logf("%s: %v/frame, scalar: %v/frame", Best(), vec, scalar)
	if vec > scalar {
		t.Errorf("%s (%v/frame) is slower than scalar (%v/frame)", Best(), vec, scalar)
	}
}

func BenchmarkFull(b *testing.B) {
	const w, h = 640, 480
	src := randomLuma(w, h, 1).yuyv(2)

	for _, be := range Available() {
		fn, _, err := kernelsFor(be)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(be.String(), func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				fn(src, FrameRegion(w, h), w, h, Combined, false)
			}
			b.ReportMetric(BenchmarkThroughput(b.N, w, h, b.Elapsed().Nanoseconds()), "Mpixels/sec")
		})
	}
}

func BenchmarkQuarter(b *testing.B) {
	const w, h = 640, 480
	src := randomLuma(2*w, 2*h, 3).yuyv(4)

	for _, be := range Available() {
		_, fn, err := kernelsFor(be)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(be.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				fn(src, FrameRegion(w, h), w, h, Combined, false)
			}
			b.ReportMetric(BenchmarkThroughput(b.N, w, h, b.Elapsed().Nanoseconds()), "Mpixels/sec")
		})
	}
}
