package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cwbudde/yuvsobel/internal/sobel"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Results are stored in a directory structure: <baseDir>/results/<id>/
// holding meta.json and grid.zst.
//
// Thread-safety: every file is written to a temporary name and renamed into
// place, so concurrent readers never see a partial file and no locks are
// needed.
type FSStore struct {
	baseDir string // Root directory for all result data (e.g., "./data")
}

const (
	metaFile = "meta.json"
	gridFile = "grid.zst"
)

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

func (fs *FSStore) resultsDir() string {
	return filepath.Join(fs.baseDir, "results")
}

func (fs *FSStore) resultDir(id string) string {
	return filepath.Join(fs.resultsDir(), id)
}

// writeAtomic writes data to path through a temp file + rename.
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Save atomically writes a result. The grid goes first so that a result
// with readable metadata always has its grid.
func (fs *FSStore) Save(res *Result, grid *sobel.Grid) error {
	if res == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if err := res.Validate(grid); err != nil {
		return err
	}

	dir := fs.resultDir(res.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, gridFile), compressGrid(grid.Pix)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, metaFile), data); err != nil {
		return err
	}

	slog.Debug("Result saved", "id", res.ID, "path", dir)
	return nil
}

// Load retrieves the metadata of a result.
func (fs *FSStore) Load(id string) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("id cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(fs.resultDir(id), metaFile))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read result metadata: %w", err)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to deserialize result: %w", err)
	}
	return &res, nil
}

// LoadGrid retrieves and decompresses the grid of a result.
func (fs *FSStore) LoadGrid(id string) (*sobel.Grid, error) {
	res, err := fs.Load(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(fs.resultDir(id), gridFile))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}

	size := res.GridWidth * res.GridHeight
	pix, err := decompressGrid(data, size)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress grid: %w", err)
	}
	if len(pix) != size {
		return nil, fmt.Errorf("grid %s: got %d bytes, want %d", id, len(pix), size)
	}

	return &sobel.Grid{Pix: pix, Width: res.GridWidth, Height: res.GridHeight}, nil
}

// List returns metadata for all stored results, newest first.
func (fs *FSStore) List() ([]Result, error) {
	entries, err := os.ReadDir(fs.resultsDir())
	if os.IsNotExist(err) {
		return []Result{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	results := []Result{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		res, err := fs.Load(entry.Name())
		if err != nil {
			slog.Warn("Failed to load result for listing", "id", entry.Name(), "error", err)
			continue
		}
		results = append(results, *res)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	slog.Debug("Listed results", "count", len(results))
	return results, nil
}

// Delete removes the result directory and everything in it.
func (fs *FSStore) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	dir := fs.resultDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat result directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove result directory: %w", err)
	}

	slog.Debug("Result deleted", "id", id, "path", dir)
	return nil
}

// CleanPolicy selects results for removal. A zero field disables that rule;
// a result is removed if either enabled rule selects it.
type CleanPolicy struct {
	MaxAge   time.Duration // remove results older than this
	KeepLast int           // keep only the newest N results
}

// Clean removes results according to policy and returns the removed IDs.
// With dryRun the IDs are reported but nothing is deleted.
func (fs *FSStore) Clean(policy CleanPolicy, now time.Time, dryRun bool) ([]string, error) {
	results, err := fs.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for i, res := range results {
		tooOld := policy.MaxAge > 0 && now.Sub(res.Timestamp) > policy.MaxAge
		overflow := policy.KeepLast > 0 && i >= policy.KeepLast
		if !tooOld && !overflow {
			continue
		}

		if !dryRun {
			if err := fs.Delete(res.ID); err != nil {
				return removed, fmt.Errorf("failed to clean %s: %w", res.ID, err)
			}
		}
		removed = append(removed, res.ID)
	}

	slog.Debug("Cleaned results", "removed", len(removed), "dryRun", dryRun)
	return removed, nil
}
