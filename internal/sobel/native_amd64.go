//go:build amd64

package sobel

import "golang.org/x/sys/cpu"

// Implemented in native_amd64.s. Each call processes whole batches with no
// bounds checks.

//go:noescape
func fullBatchesSSE2(dst, above, center, below *byte, n int, dir Direction)

//go:noescape
func quarterBatchesSSE2(dst, above, center, below *byte, n int, dir Direction)

// The AVX2 kernels run two batches per iteration, one in each 128-bit half
// of a YMM register.

//go:noescape
func fullPairsAVX2(dst, above, center, below *byte, pairs int, dir Direction)

//go:noescape
func quarterPairsAVX2(dst, above, center, below *byte, pairs int, dir Direction)

func archKernels() []native {
	var ks []native
	if cpu.X86.HasAVX2 {
		ks = append(ks, native{BackendAVX2, fullRowAVX2, quarterRowAVX2})
	}
	// SSE2 is part of the amd64 baseline.
	return append(ks, native{BackendSSE2, fullRowSSE2, quarterRowSSE2})
}

func fullRowSSE2(dst, src []byte, above, center, below, n int, dir Direction) {
	fullBatchesSSE2(&dst[0], &src[above], &src[center], &src[below], n, dir)
}

func quarterRowSSE2(dst, src []byte, above, center, below, n int, dir Direction) {
	quarterBatchesSSE2(&dst[0], &src[above], &src[center], &src[below], n, dir)
}

func fullRowAVX2(dst, src []byte, above, center, below, n int, dir Direction) {
	if pairs := n / 2; pairs > 0 {
		fullPairsAVX2(&dst[0], &src[above], &src[center], &src[below], pairs, dir)
	}
	if n%2 == 1 {
		k := n - 1
		d, s := k*BatchStride, k*fullPass.step()
		fullBatchesSSE2(&dst[d], &src[above+s], &src[center+s], &src[below+s], 1, dir)
	}
}

func quarterRowAVX2(dst, src []byte, above, center, below, n int, dir Direction) {
	if pairs := n / 2; pairs > 0 {
		quarterPairsAVX2(&dst[0], &src[above], &src[center], &src[below], pairs, dir)
	}
	if n%2 == 1 {
		k := n - 1
		d, s := k*BatchStride, k*quarterPass.step()
		quarterBatchesSSE2(&dst[d], &src[above+s], &src[center+s], &src[below+s], 1, dir)
	}
}
