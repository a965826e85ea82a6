package sobel

// CompareBackends runs one pipeline through backend b and through the
// scalar reference and reports whether the grids are bit-identical, together
// with the index of the first differing pixel (-1 when equal).
func CompareBackends(b Backend, src []byte, r Region, width, height int, dir Direction, crop, quarter bool) (bool, int, error) {
	full, quart, err := kernelsFor(b)
	if err != nil {
		return false, 0, err
	}

	var got, ref *Grid
	if quarter {
		got = quart(src, r, width, height, dir, crop)
		ref = quarterScalar(src, r, width, height, dir, crop)
	} else {
		got = full(src, r, width, height, dir, crop)
		ref = fullScalar(src, r, width, height, dir, crop)
	}

	if got.Width != ref.Width || got.Height != ref.Height {
		return false, 0, nil
	}
	for i := range ref.Pix {
		if got.Pix[i] != ref.Pix[i] {
			return false, i, nil
		}
	}
	return true, -1, nil
}

// BenchmarkThroughput converts an iteration count and elapsed time into
// megapixels per second for a width x height region.
func BenchmarkThroughput(iterations, width, height int, durationNs int64) float64 {
	if durationNs <= 0 {
		return 0
	}
	totalPixels := float64(iterations) * float64(width) * float64(height)
	seconds := float64(durationNs) / 1e9
	return (totalPixels / 1e6) / seconds
}
