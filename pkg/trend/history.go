// Package trend keeps a bounded reading history and draws it as a chart.
package trend

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/sensornode/pkg/reading"
)

// DefaultCapacity is the number of points kept when none is given.
const DefaultCapacity = 2048

// Point is one plotted reading.
type Point struct {
	Timestamp   time.Time
	Temperature float32
	Humidity    float32
	Motion      bool
}

// PointFrom converts a reading stamped at the given time.
func PointFrom(r reading.Reading, at time.Time) Point {
	return Point{
		Timestamp:   at,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Motion:      r.Motion,
	}
}

// History is a fixed-capacity ring of points, oldest first.
type History struct {
	mu     sync.RWMutex
	points []Point
	start  int
	count  int
}

// NewHistory creates a history keeping at most capacity points.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{points: make([]Point, capacity)}
}

// Add appends p, evicting the oldest point when full. Points with a NaN
// channel are ignored.
func (h *History) Add(p Point) {
	if math32.IsNaN(p.Temperature) || math32.IsNaN(p.Humidity) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	idx := (h.start + h.count) % len(h.points)
	h.points[idx] = p
	if h.count < len(h.points) {
		h.count++
	} else {
		h.start = (h.start + 1) % len(h.points)
	}
}

// Len returns the number of stored points.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Points copies the stored points into dst, oldest first, reusing its capacity.
func (h *History) Points(dst []Point) []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dst = dst[:0]
	for i := range h.count {
		dst = append(dst, h.points[(h.start+i)%len(h.points)])
	}
	return dst
}

// Clear drops every point.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start, h.count = 0, 0
}
