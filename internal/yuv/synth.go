package yuv

import "math/rand"

// Flat returns a frame with every luma sample set to v.
func Flat(width, height int, v uint8) *Frame {
	f := NewFrame(width, height)
	for i := 0; i < len(f.Data); i += 2 {
		f.Data[i] = v
	}
	return f
}

// StepEdge returns a frame whose luma is lo for x < step and hi otherwise.
func StepEdge(width, height, step int, lo, hi uint8) *Frame {
	f := NewFrame(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if x >= step {
				v = hi
			}
			f.SetY(x, y, v)
		}
	}
	return f
}

// Random fills luma and chroma with seeded pseudo-random bytes.
func Random(width, height int, seed int64) *Frame {
	f := NewFrame(width, height)
	rng := rand.New(rand.NewSource(seed))
	rng.Read(f.Data)
	return f
}

// Upscale2x returns a frame twice the size of f in each dimension where
// every luma sample is replicated into a 2x2 block. Sampling the result at
// every second column and row yields f's luma again.
func Upscale2x(f *Frame) *Frame {
	out := NewFrame(2*f.Width, 2*f.Height)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.SetY(x, y, f.Y(x/2, y/2))
		}
	}
	return out
}
