//go:build arm64

package sobel

import "golang.org/x/sys/cpu"

// Implemented in native_arm64.s.

//go:noescape
func fullBatchesNEON(dst, above, center, below *byte, n int, dir Direction)

//go:noescape
func quarterBatchesNEON(dst, above, center, below *byte, n int, dir Direction)

func archKernels() []native {
	if !cpu.ARM64.HasASIMD {
		return nil
	}
	return []native{{BackendNEON, fullRowNEON, quarterRowNEON}}
}

func fullRowNEON(dst, src []byte, above, center, below, n int, dir Direction) {
	fullBatchesNEON(&dst[0], &src[above], &src[center], &src[below], n, dir)
}

func quarterRowNEON(dst, src []byte, above, center, below, n int, dir Direction) {
	quarterBatchesNEON(&dst[0], &src[above], &src[center], &src[below], n, dir)
}
