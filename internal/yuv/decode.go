package yuv

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// IsRaw reports whether path names a raw YUYV frame rather than an encoded
// picture.
func IsRaw(path string) bool {
	p := strings.ToLower(path)
	p = strings.TrimSuffix(p, ".zst")
	switch filepath.Ext(p) {
	case ".yuv", ".yuyv", ".raw":
		return true
	}
	return false
}

// LoadImage decodes a PNG, JPEG or WebP picture and converts it to YUYV.
func LoadImage(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Load reads path as a raw frame of width x height when it has a raw
// extension and as an encoded picture otherwise. width and height are
// ignored for pictures.
func Load(path string, width, height int) (*Frame, error) {
	if IsRaw(path) {
		return ReadFile(path, width, height)
	}
	return LoadImage(path)
}
