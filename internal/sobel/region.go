package sobel

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a rectangle of interest given by two inclusive corners in
// destination pixel coordinates. The corners may arrive in any order; the
// pipelines call Normalize before use. A full 640x480 frame is
// Region{0, 0, 639, 479}.
type Region struct {
	StartX, StartY int
	EndX, EndY     int
}

// FrameRegion returns the region covering a whole width x height image.
func FrameRegion(width, height int) Region {
	return Region{StartX: 0, StartY: 0, EndX: width - 1, EndY: height - 1}
}

// Normalize orders the corners so that StartX <= EndX and StartY <= EndY,
// swapping each axis independently.
func (r Region) Normalize() Region {
	if r.StartX > r.EndX {
		r.StartX, r.EndX = r.EndX, r.StartX
	}
	if r.StartY > r.EndY {
		r.StartY, r.EndY = r.EndY, r.StartY
	}
	return r
}

// Width returns the inclusive column count of a normalized region.
func (r Region) Width() int {
	return r.EndX - r.StartX + 1
}

// Height returns the inclusive row count of a normalized region.
func (r Region) Height() int {
	return r.EndY - r.StartY + 1
}

// String formats the region as "x0,y0,x1,y1", the form accepted by ParseRegion.
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.StartX, r.StartY, r.EndX, r.EndY)
}

// ParseRegion parses "x0,y0,x1,y1". The corners are returned as given,
// not normalized.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: want 4 comma-separated integers, got %d", s, len(parts))
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}

	return Region{StartX: v[0], StartY: v[1], EndX: v[2], EndY: v[3]}, nil
}
