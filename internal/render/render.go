// Package render turns gradient grids into images and writes them to disk.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"

	"github.com/cwbudde/yuvsobel/internal/sobel"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q (want .png, .bmp or .tiff)", filepath.Ext(path))
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// EncodeBytes encodes img to memory.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes img by the extension of path. The file is written to a
// temporary name first and renamed into place.
func WriteFile(path string, img image.Image) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := EncodeBytes(img, f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}

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

// Gray returns the grid as a grayscale image. The pixels are shared.
func Gray(g *sobel.Grid) *image.Gray {
	return g.Gray()
}

// Scale resizes img to the given width keeping the aspect ratio. Nearest
// neighbour keeps single-pixel edges crisp.
func Scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() {
		return img
	}
	rect := image.Rect(0, 0, width, max(1, b.Dy()*width/b.Dx()))
	var dst draw.Image
	if _, ok := img.(*image.Gray); ok {
		dst = image.NewGray(rect)
	} else {
		dst = image.NewRGBA(rect)
	}
	xdraw.NearestNeighbor.Scale(dst, rect, img, b, draw.Src, nil)
	return dst
}

var (
	overlayColor = color.RGBA{255, 64, 64, 255}
	labelColor   = color.RGBA{255, 255, 0, 255}
)

// Overlay draws the normalized region outline and a text label on top of
// a full-frame grid. A cropped grid already is the region, so pass the
// region in grid coordinates (0,0,w-1,h-1) for it.
func Overlay(g *sobel.Grid, r sobel.Region, label string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	draw.Draw(img, img.Bounds(), g.Gray(), image.Point{}, draw.Src)

	r = r.Normalize()
	for x := r.StartX; x <= r.EndX; x++ {
		img.Set(x, r.StartY, overlayColor)
		img.Set(x, r.EndY, overlayColor)
	}
	for y := r.StartY; y <= r.EndY; y++ {
		img.Set(r.StartX, y, overlayColor)
		img.Set(r.EndX, y, overlayColor)
	}

	if label != "" {
		face := basicfont.Face7x13
		// Baseline sits one line below the region's top edge, clamped to
		// the image.
		y := min(r.StartY+face.Ascent+2, g.Height-face.Descent)
		x := max(r.StartX+2, 0)
		drawText(img, face, label, x, y, labelColor)
	}
	return img
}

func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
