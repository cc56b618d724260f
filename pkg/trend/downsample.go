package trend

// Downsample reduces points to at most maxPoints by decimation for display.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// If len(points) <= maxPoints, copies all points.
func Downsample[T any](dst []T, points []T, maxPoints int) []T {
	if maxPoints <= 0 || len(points) <= maxPoints {
		if cap(dst) >= len(points) {
			dst = dst[:len(points)]
			copy(dst, points)
			return dst
		}
		result := make([]T, len(points))
		copy(result, points)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]T, 0, maxPoints)
	}

	step := float64(len(points)) / float64(maxPoints)
	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(points) {
			dst = append(dst, points[idx])
		}
	}

	// Always keep the newest point
	dst[len(dst)-1] = points[len(points)-1]
	return dst
}
