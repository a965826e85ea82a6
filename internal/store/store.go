// Package store persists gradient results on the local filesystem.
package store

import "github.com/cwbudde/yuvsobel/internal/sobel"

// Store defines the interface for gradient result persistence.
// Implementations must be safe for concurrent use by multiple goroutines.
//
// Error handling:
//   - Return ErrNotFound if the result doesn't exist (for Load/LoadGrid/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// Save atomically writes the metadata and grid of a result. An existing
	// result with the same ID is overwritten.
	Save(res *Result, grid *sobel.Grid) error

	// Load returns the metadata of a result.
	Load(id string) (*Result, error)

	// LoadGrid returns the stored gradient grid of a result.
	LoadGrid(id string) (*sobel.Grid, error)

	// List returns the metadata of every stored result, newest first.
	List() ([]Result, error)

	// Delete removes a result and all its files.
	Delete(id string) error
}

// ErrNotFound is returned when a requested result does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing result.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "result not found: " + e.ID
	}
	return "result not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
