// Package yuv holds packed YUYV 4:2:2 frames: construction, luma access,
// conversion from image.Image, synthetic test patterns and raw file I/O.
//
// Byte layout of one row: Y0 U0 Y1 V0 Y2 U1 Y3 V1 ... Every luma sample
// takes one byte at a two-byte stride; each U/V pair is shared by two
// horizontally adjacent samples.
package yuv

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// BytesPerPixel is the average storage of one pixel in YUYV.
const BytesPerPixel = 2

// Frame is a packed YUYV 4:2:2 image.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// NewFrame allocates a black frame (Y=0, U=V=128).
func NewFrame(width, height int) *Frame {
	f := &Frame{
		Data:   make([]byte, width*height*BytesPerPixel),
		Width:  width,
		Height: height,
	}
	for i := 1; i < len(f.Data); i += 2 {
		f.Data[i] = 128
	}
	return f
}

// FrameBytes returns the size of a width x height YUYV frame in bytes. It
// fails for non-positive sizes and for sizes whose byte count overflows int.
func FrameBytes(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if width > math.MaxInt/BytesPerPixel/height {
		return 0, fmt.Errorf("frame size %dx%d is too large", width, height)
	}
	return width * height * BytesPerPixel, nil
}

// Wrap validates that data is large enough for width x height and returns
// a Frame aliasing it.
func Wrap(data []byte, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if width%2 != 0 {
		return nil, fmt.Errorf("YUYV width must be even, got %d", width)
	}
	need, err := FrameBytes(width, height)
	if err != nil {
		return nil, err
	}
	if len(data) < need {
		return nil, fmt.Errorf("frame %dx%d needs %d bytes, got %d", width, height, need, len(data))
	}
	return &Frame{Data: data, Width: width, Height: height}, nil
}

// Stride returns the number of bytes per row.
func (f *Frame) Stride() int {
	return f.Width * BytesPerPixel
}

// Y returns the luma sample at (x, y).
func (f *Frame) Y(x, y int) uint8 {
	return f.Data[y*f.Stride()+2*x]
}

// SetY sets the luma sample at (x, y).
func (f *Frame) SetY(x, y int, v uint8) {
	f.Data[y*f.Stride()+2*x] = v
}

// Chroma returns the U and V samples shared by pixel (x, y).
func (f *Frame) Chroma(x, y int) (u, v uint8) {
	i := y*f.Stride() + 4*(x/2)
	return f.Data[i+1], f.Data[i+3]
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Luma extracts the luma plane row by row.
func (f *Frame) Luma() *image.Gray {
	g := image.NewGray(f.Bounds())
	for y := 0; y < f.Height; y++ {
		GatherStride(g.Pix[y*g.Stride:y*g.Stride+f.Width], f.Data[y*f.Stride():], 0, 2)
	}
	return g
}

// GatherStride copies every stride-th byte of src, starting at offset, into
// dst until dst is full or src runs out. It returns the number of bytes
// written. With offset 0 and stride 2 this extracts YUYV luma; it is the
// plain-loop counterpart of the register-shuffle deinterleave used by the
// gradient kernels and works for any batch width.
func GatherStride(dst, src []byte, offset, stride int) int {
	n := 0
	for i := offset; n < len(dst) && i < len(src); i += stride {
		dst[n] = src[i]
		n++
	}
	return n
}

// FromImage converts img to YUYV using the BT.601 coefficients of
// color.RGBToYCbCr. Chroma is the mean of the two pixels sharing it. An odd
// width is rounded up by repeating the last column.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	w := b.Dx() + b.Dx()%2
	f := NewFrame(w, b.Dy())

	sample := func(x, y int) (uint8, uint8, uint8) {
		if x >= b.Dx() {
			x = b.Dx() - 1
		}
		r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
		return color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
	}

	for y := 0; y < f.Height; y++ {
		row := f.Data[y*f.Stride():]
		for x := 0; x < w; x += 2 {
			y0, u0, v0 := sample(x, y)
			y1, u1, v1 := sample(x+1, y)
			i := 2 * x
			row[i] = y0
			row[i+1] = uint8((int(u0) + int(u1) + 1) / 2)
			row[i+2] = y1
			row[i+3] = uint8((int(v0) + int(v1) + 1) / 2)
		}
	}
	return f
}
