package trend

import (
	"time"

	"github.com/chewxy/math32"
)

// Range is an axis range.
type Range struct {
	Min, Max float32
}

// Span returns Max-Min.
func (r Range) Span() float32 {
	return r.Max - r.Min
}

// Norm maps v into [0,1] over the range.
func (r Range) Norm(v float32) float32 {
	if r.Span() == 0 {
		return 0.5
	}
	return (v - r.Min) / r.Span()
}

// autoScale returns the value range of sel over points with a 10% margin. An
// empty or flat series gets a span of at least minSpan around its value.
func autoScale(points []Point, sel func(Point) float32, minSpan float32) Range {
	if len(points) == 0 {
		return Range{Min: 0, Max: minSpan}
	}

	lo, hi := sel(points[0]), sel(points[0])
	for _, p := range points[1:] {
		v := sel(p)
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}

	if hi-lo < minSpan {
		mid := (hi + lo) / 2
		lo, hi = mid-minSpan/2, mid+minSpan/2
	}
	margin := (hi - lo) * 0.1
	return Range{Min: lo - margin, Max: hi + margin}
}

// timeWindow returns the plotted time range, at least window long.
func timeWindow(points []Point, window time.Duration, now time.Time) (time.Time, time.Time) {
	if len(points) == 0 {
		return now.Add(-window), now
	}
	first := points[0].Timestamp
	last := points[len(points)-1].Timestamp
	if last.Sub(first) < window {
		first = last.Add(-window)
	}
	return first, last
}

func temperatureOf(p Point) float32 { return p.Temperature }
func humidityOf(p Point) float32    { return p.Humidity }
