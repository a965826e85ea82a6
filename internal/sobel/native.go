package sobel

// native pairs a hand-written row kernel with the backend it implements.
type native struct {
	backend       Backend
	full, quarter rowFunc
}

// natives lists the row kernels this host can run, fastest first.
var natives = archKernels()

func (k native) fullKernel() kernelFunc {
	return func(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
		return walk(fullPass, k.full, src, r, width, height, dir, crop)
	}
}

func (k native) quarterKernel() kernelFunc {
	return func(src []byte, r Region, width, height int, dir Direction, crop bool) *Grid {
		return walk(quarterPass, k.quarter, src, r, width, height, dir, crop)
	}
}
