// Package sobel computes 8-bit Sobel edge-magnitude images from the luma
// channel of packed YUYV 4:2:2 frames.
//
// Two pipelines share one contract:
//
//	Full:    every luma sample of a width x height frame
//	Quarter: a 2*width x 2*height frame decimated 2x2 -> 1 (every second
//	         row and column, no averaging)
//
// Both take an inclusive region in destination coordinates, a Direction and
// a layout flag, and return a freshly allocated Grid the caller owns.
//
// The pipelines trust their caller. Region coordinates are not checked
// against the frame; a region outside [0,width)x[0,height) panics or yields
// meaningless values. Validate geometry before calling (see package guard).
// A source slice shorter than the last batch reads as zeros past its end,
// so no padding is required.
package sobel

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/yuvsobel/internal/lanes"
	"golang.org/x/sys/cpu"
)

// Batch geometry. One 16-lane load yields 14 usable results because the
// 3x3 window consumes one lane on each side.
const (
	BatchLanes          = lanes.N
	BatchStride         = BatchLanes - 2
	QuarterSourceStride = 2 * BatchStride
)

// Backend identifies which kernel implementation is active.
type Backend int

const (
	BackendScalar Backend = iota // per-pixel reference
	BackendLanes                 // portable 16-lane pipeline
	BackendSSE2                  // amd64 baseline, one batch per iteration
	BackendAVX2                  // amd64, two batches per iteration
	BackendNEON                  // arm64 Advanced SIMD
)

func (b Backend) String() string {
	switch b {
	case BackendScalar:
		return "scalar"
	case BackendLanes:
		return "lanes"
	case BackendSSE2:
		return "sse2"
	case BackendAVX2:
		return "avx2"
	case BackendNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// ParseBackend maps a backend name to a Backend. "simd", "native" and
// "auto" pick the fastest backend this host supports.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return BackendScalar, nil
	case "lanes", "portable":
		return BackendLanes, nil
	case "sse2":
		return BackendSSE2, nil
	case "avx2":
		return BackendAVX2, nil
	case "neon":
		return BackendNEON, nil
	case "simd", "native", "auto":
		return Best(), nil
	default:
		return BackendScalar, fmt.Errorf("unknown backend %q (want scalar, lanes, sse2, avx2, neon or auto)", s)
	}
}

type kernelFunc func(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid

// ActiveBackend reports which backend Full and Quarter dispatch to.
var ActiveBackend Backend

var (
	fullKernel    kernelFunc
	quarterKernel kernelFunc
)

func init() {
	if NoSimdEnv() {
		UseBackend(BackendScalar)
		slog.Debug("Sobel kernel initialized", "backend", "scalar", "reason", "YUVSOBEL_NO_SIMD set")
		return
	}

	b := Best()
	UseBackend(b)
	slog.Debug("Sobel kernel initialized", "backend", b.String(), "host", HostSIMD())
}

// Best returns the fastest backend the host supports. Without a native row
// kernel that is the scalar pipeline: the portable lane pipeline computes
// the same values but runs slower than plain per-pixel code.
func Best() Backend {
	if len(natives) > 0 {
		return natives[0].backend
	}
	return BackendScalar
}

// Available lists the backends usable on this host, fastest first.
func Available() []Backend {
	var out []Backend
	for _, k := range natives {
		out = append(out, k.backend)
	}
	return append(out, BackendScalar, BackendLanes)
}

// kernelsFor returns the Full and Quarter implementations of b.
func kernelsFor(b Backend) (full, quarter kernelFunc, err error) {
	switch b {
	case BackendScalar:
		return fullScalar, quarterScalar, nil
	case BackendLanes:
		return fullLanes, quarterLanes, nil
	}
	for _, k := range natives {
		if k.backend == b {
			return k.fullKernel(), k.quarterKernel(), nil
		}
	}
	if b.String() == "unknown" {
		return nil, nil, fmt.Errorf("unknown backend: %d", int(b))
	}
	return nil, nil, fmt.Errorf("backend %s is not supported on this host (%s)", b, HostSIMD())
}

// UseBackend switches the implementation behind Full and Quarter. It is not
// safe to call while other goroutines run a pipeline.
func UseBackend(b Backend) error {
	full, quarter, err := kernelsFor(b)
	if err != nil {
		return err
	}
	fullKernel, quarterKernel = full, quarter
	ActiveBackend = b
	return nil
}

// NoSimdEnv reports whether YUVSOBEL_NO_SIMD requests the scalar backend.
func NoSimdEnv() bool {
	val := os.Getenv("YUVSOBEL_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// HostSIMD names the widest SIMD extension the host CPU reports.
func HostSIMD() string {
	switch {
	case cpu.X86.HasAVX512BW:
		return "avx512bw"
	case cpu.X86.HasAVX2:
		return "avx2"
	case cpu.X86.HasSSSE3:
		return "ssse3"
	case cpu.X86.HasSSE2:
		return "sse2"
	case cpu.ARM64.HasASIMD:
		return "neon"
	default:
		return "none"
	}
}

// Full computes the gradient image of a width x height YUYV frame over
// region r. With crop the grid is the region's size and its outer ring is
// zero; otherwise the grid is width x height and everything outside the
// region interior is FullSentinel.
func Full(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	return fullKernel(src, r, width, height, dir, crop)
}

// Quarter is Full for a source of twice the linear resolution: src holds
// 2*width x 2*height luma samples and the pipeline keeps every second row
// and column. r, width and height are in destination coordinates. The
// full-frame border value is QuarterSentinel.
func Quarter(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	return quarterKernel(src, r, width, height, dir, crop)
}

// FullFrame runs Full over the whole frame with the full-frame layout.
func FullFrame(src []byte, width, height int, dir Direction) *Grid {
	return Full(src, FrameRegion(width, height), width, height, dir, false)
}

// QuarterFrame runs Quarter over the whole destination frame with the
// full-frame layout.
func QuarterFrame(src []byte, width, height int, dir Direction) *Grid {
	return Quarter(src, FrameRegion(width, height), width, height, dir, false)
}

// fullLanes is the portable lane implementation of Full.
func fullLanes(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	return walk(fullPass, nil, src, r, width, height, dir, crop)
}

// quarterLanes is the portable lane implementation of Quarter.
func quarterLanes(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
	return walk(quarterPass, nil, src, r, width, height, dir, crop)
}
