// Package camera binds the gradient pipelines to named camera resolutions.
//
// A Preset carries the sensor resolution; its methods validate the request
// and run the matching pipeline. Quarter variants treat the sensor frame as
// the 2x source and return a grid of half the width and height.
package camera

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cwbudde/yuvsobel/internal/guard"
	"github.com/cwbudde/yuvsobel/internal/sobel"
)

// Preset is a named camera resolution.
type Preset struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Built-in presets for the two sensors the kernels were tuned for.
var (
	Upper = Preset{Name: "upper", Width: 1280, Height: 960}
	Lower = Preset{Name: "lower", Width: 640, Height: 480}
)

// QuarterSize returns the destination size of the quarter pipeline.
func (p Preset) QuarterSize() (width, height int) {
	return p.Width / 2, p.Height / 2
}

// FrameBytes returns the size of one YUYV frame from this camera.
func (p Preset) FrameBytes() int {
	return guard.RequiredBufferLen(p.Width, p.Height, false)
}

// Gradient runs the full pipeline over region r.
func (p Preset) Gradient(src []byte, r sobel.Region, dir sobel.Direction, crop bool) (*sobel.Grid, error) {
	g := guard.Geometry{Width: p.Width, Height: p.Height, Region: r, Dir: dir}
	if err := guard.Validate(g, len(src)); err != nil {
		return nil, fmt.Errorf("camera %s: %w", p.Name, err)
	}
	return sobel.Full(src, r, p.Width, p.Height, dir, crop), nil
}

// GradientFrame runs the full pipeline over the whole image with the
// full-frame layout.
func (p Preset) GradientFrame(src []byte, dir sobel.Direction) (*sobel.Grid, error) {
	return p.Gradient(src, sobel.FrameRegion(p.Width, p.Height), dir, false)
}

// GradientQuarter runs the quarter pipeline. r is in quarter coordinates.
func (p Preset) GradientQuarter(src []byte, r sobel.Region, dir sobel.Direction, crop bool) (*sobel.Grid, error) {
	if p.Width%2 != 0 || p.Height%2 != 0 {
		return nil, fmt.Errorf("camera %s: %dx%d cannot be quartered", p.Name, p.Width, p.Height)
	}
	w, h := p.QuarterSize()
	g := guard.Geometry{Width: w, Height: h, Region: r, Dir: dir, Quarter: true}
	if err := guard.Validate(g, len(src)); err != nil {
		return nil, fmt.Errorf("camera %s: %w", p.Name, err)
	}
	return sobel.Quarter(src, r, w, h, dir, crop), nil
}

// GradientQuarterFrame runs the quarter pipeline over the whole decimated
// image with the full-frame layout.
func (p Preset) GradientQuarterFrame(src []byte, dir sobel.Direction) (*sobel.Grid, error) {
	w, h := p.QuarterSize()
	return p.GradientQuarter(src, sobel.FrameRegion(w, h), dir, false)
}

// Registry maps preset names to presets.
type Registry map[string]Preset

// Defaults returns a registry holding the built-in presets.
func Defaults() Registry {
	return Registry{Upper.Name: Upper, Lower.Name: Lower}
}

// Lookup returns the named preset.
func (r Registry) Lookup(name string) (Preset, error) {
	p, ok := r[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown camera preset %q", name)
	}
	return p, nil
}

// Names returns the preset names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type presetFile struct {
	Presets []Preset `json:"presets"`
}

// LoadPresets reads a JSON preset file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func LoadPresets(path string) (Registry, error) {
	reg := Defaults()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var pf presetFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}

	for _, p := range pf.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset in %s has no name", path)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("preset %q: invalid size %dx%d", p.Name, p.Width, p.Height)
		}
		reg[p.Name] = p
	}
	return reg, nil
}
