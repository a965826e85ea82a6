package sobel

import "math/rand"

// lumaTable is a width x height plane of luma samples used to build frames.
type lumaTable struct {
	width, height int
	pix           []uint8
}

func newLumaTable(width, height int, fn func(x, y int) uint8) *lumaTable {
	t := &lumaTable{width: width, height: height, pix: make([]uint8, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t.pix[y*width+x] = fn(x, y)
		}
	}
	return t
}

func randomLuma(width, height int, seed int64) *lumaTable {
	rng := rand.New(rand.NewSource(seed))
	return newLumaTable(width, height, func(x, y int) uint8 {
		return uint8(rng.Intn(256))
	})
}

func (t *lumaTable) at(x, y int) uint8 {
	return t.pix[y*t.width+x]
}

// yuyv packs the table as Y U Y V with random chroma bytes, so any test that
// accidentally reads chroma sees noise.
func (t *lumaTable) yuyv(seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]byte, 2*t.width*t.height)
	for i, y := range t.pix {
		buf[2*i] = y
		buf[2*i+1] = uint8(rng.Intn(256))
	}
	return buf
}

// upscale2x replicates every sample into a 2x2 block.
func (t *lumaTable) upscale2x() *lumaTable {
	return newLumaTable(2*t.width, 2*t.height, func(x, y int) uint8 {
		return t.at(x/2, y/2)
	})
}

// interior reports whether (x, y) is computed in the full-frame layout.
func interior(r Region, x, y int) bool {
	return x > r.StartX && x < r.EndX-1 && y > r.StartY && y < r.EndY-1
}
