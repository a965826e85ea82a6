package store

import (
	"time"

	"github.com/cwbudde/yuvsobel/internal/sobel"
)

// Result is the metadata stored next to a gradient grid.
type Result struct {
	// ID is the unique identifier of the result (a UUID for server and CLI runs)
	ID string `json:"id"`

	// Source names where the frame came from: a file path or "upload"
	Source string `json:"source,omitempty"`

	// FrameWidth and FrameHeight are the destination frame size
	FrameWidth  int `json:"frameWidth"`
	FrameHeight int `json:"frameHeight"`

	// Region is the requested region in "x0,y0,x1,y1" form, as given
	Region string `json:"region"`

	Direction string `json:"direction"`
	Crop      bool   `json:"crop"`
	Quarter   bool   `json:"quarter"`
	Backend   string `json:"backend"`

	// GridWidth and GridHeight are the size of the stored grid
	GridWidth  int `json:"gridWidth"`
	GridHeight int `json:"gridHeight"`

	Stats sobel.GridStats `json:"stats"`

	// Duration is the kernel run time in milliseconds
	Duration float64 `json:"durationMs"`

	Timestamp time.Time `json:"timestamp"`
}

// Validate checks that the metadata is complete and consistent with grid.
func (r *Result) Validate(grid *sobel.Grid) error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.FrameWidth <= 0 || r.FrameHeight <= 0 {
		return &ValidationError{Field: "FrameWidth/FrameHeight", Reason: "must be positive"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if grid == nil {
		return &ValidationError{Field: "grid", Reason: "cannot be nil"}
	}
	if grid.Width != r.GridWidth || grid.Height != r.GridHeight {
		return &ValidationError{Field: "GridWidth/GridHeight", Reason: "do not match grid"}
	}
	if len(grid.Pix) != grid.Width*grid.Height {
		return &ValidationError{Field: "grid", Reason: "pixel count does not match size"}
	}
	return nil
}

// ValidationError represents a result validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
