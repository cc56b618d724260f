package trend

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// Widget is a Fyne widget plotting temperature and humidity over time, with
// motion marked along the time axis.
type Widget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu        sync.RWMutex
	display   []Point
	temp      Range
	humid     Range
	xMin      time.Time
	xMax      time.Time
	maxPoints int
}

// New creates a trend widget showing at least window of history.
func New(window time.Duration) *Widget {
	if window <= 0 {
		window = time.Minute
	}
	w := &Widget{
		window:    window,
		display:   make([]Point, 0, 500),
		maxPoints: 500, // Limit points for efficient rendering
	}
	w.ExtendBaseWidget(w)
	w.setScale(time.Now())
	return w
}

// UpdateData replaces the plotted points. Call it on the Fyne goroutine
// (fyne.Do) when updating from a worker.
func (w *Widget) UpdateData(points []Point) {
	w.mu.Lock()
	w.display = Downsample(w.display, points, w.maxPoints)
	w.setScale(time.Now())
	w.mu.Unlock()

	// Refresh outside the lock; the renderer takes it again
	w.Refresh()
}

// Ranges returns the current temperature and humidity axes.
func (w *Widget) Ranges() (temp, humid Range) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.temp, w.humid
}

func (w *Widget) setScale(now time.Time) {
	w.temp = autoScale(w.display, temperatureOf, 1)
	w.humid = autoScale(w.display, humidityOf, 5)
	w.xMin, w.xMax = timeWindow(w.display, w.window, now)
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &renderer{
		trend:      w,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
