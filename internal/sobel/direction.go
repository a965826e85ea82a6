package sobel

import (
	"fmt"
	"strings"
)

// Direction selects which gradient component(s) a pipeline computes.
type Direction int

const (
	// Combined estimates the gradient magnitude from both components.
	Combined Direction = iota
	// Horizontal emits only the horizontal gradient gx.
	Horizontal
	// Vertical emits only the vertical gradient gy.
	Vertical
)

func (d Direction) String() string {
	switch d {
	case Combined:
		return "combined"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the three defined directions.
func (d Direction) Valid() bool {
	return d == Combined || d == Horizontal || d == Vertical
}

func (d Direction) needsX() bool { return d == Combined || d == Horizontal }
func (d Direction) needsY() bool { return d == Combined || d == Vertical }

// ParseDirection accepts the direction names used on the command line and
// in the HTTP API.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "combined", "uni", "both":
		return Combined, nil
	case "horizontal", "x":
		return Horizontal, nil
	case "vertical", "y":
		return Vertical, nil
	default:
		return Combined, fmt.Errorf("unknown direction %q (want combined, horizontal or vertical)", s)
	}
}
