// Package guard checks gradient requests before they reach the pipelines.
//
// The sobel pipelines index the source buffer without bounds checks on the
// region. Every caller that takes geometry from outside the process (the
// CLI, the HTTP API, camera presets) runs it through Validate first.
package guard

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/yuvsobel/internal/sobel"
)

// Minimum region extent. A batch needs 16 columns of source to produce its
// 14 results, and the 3x3 window needs at least three rows.
const (
	MinRegionWidth  = sobel.BatchLanes
	MinRegionHeight = 3
)

var (
	ErrInvalidSize      = errors.New("invalid frame size")
	ErrOutOfBounds      = errors.New("region out of bounds")
	ErrRegionTooSmall   = errors.New("region too small")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrBufferTooSmall   = errors.New("source buffer too small")
)

// Geometry describes one gradient request.
type Geometry struct {
	Width   int // destination frame width
	Height  int // destination frame height
	Region  sobel.Region
	Dir     sobel.Direction
	Quarter bool // source is 2*Width x 2*Height
}

// GeometryError reports which check rejected a request.
type GeometryError struct {
	Kind   error
	Detail string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *GeometryError) Unwrap() error {
	return e.Kind
}

// Is lets errors.Is match either the sentinel kind or another
// GeometryError of the same kind.
func (e *GeometryError) Is(target error) bool {
	if t, ok := target.(*GeometryError); ok {
		return t.Kind == e.Kind
	}
	return target == e.Kind
}

func reject(kind error, format string, args ...any) error {
	return &GeometryError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// sourceBytesPerPixel is the number of source bytes behind one destination
// pixel: 2 for YUYV, on a grid four times larger for the quarter pipeline.
func sourceBytesPerPixel(quarter bool) int {
	if quarter {
		return 8
	}
	return 2
}

// fits reports whether the source of a width x height frame can be
// addressed with an int. Both sizes must be positive.
func fits(width, height int, quarter bool) bool {
	return width <= math.MaxInt/sourceBytesPerPixel(quarter)/height
}

// RequiredBufferLen returns the byte count a source buffer needs for a
// width x height destination. It saturates at math.MaxInt.
func RequiredBufferLen(width, height int, quarter bool) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	if !fits(width, height, quarter) {
		return math.MaxInt
	}
	return sourceBytesPerPixel(quarter) * width * height
}

// Validate checks g against a source buffer of srcLen bytes. The region is
// normalized before the bounds checks, so corners may come in any order.
func Validate(g Geometry, srcLen int) error {
	if g.Width <= 0 || g.Height <= 0 {
		return reject(ErrInvalidSize, "%dx%d", g.Width, g.Height)
	}
	if !fits(g.Width, g.Height, g.Quarter) {
		return reject(ErrInvalidSize, "%dx%d source exceeds the addressable size", g.Width, g.Height)
	}
	if !g.Dir.Valid() {
		return reject(ErrInvalidDirection, "%d", int(g.Dir))
	}

	r := g.Region.Normalize()
	if r.StartX < 0 || r.StartY < 0 || r.EndX >= g.Width || r.EndY >= g.Height {
		return reject(ErrOutOfBounds, "region %s outside %dx%d frame", r, g.Width, g.Height)
	}
	if r.Width() < MinRegionWidth || r.Height() < MinRegionHeight {
		return reject(ErrRegionTooSmall, "region %s is %dx%d, need at least %dx%d",
			r, r.Width(), r.Height(), MinRegionWidth, MinRegionHeight)
	}

	if need := RequiredBufferLen(g.Width, g.Height, g.Quarter); srcLen < need {
		return reject(ErrBufferTooSmall, "have %d bytes, need %d", srcLen, need)
	}
	return nil
}
