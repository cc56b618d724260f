package trend

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	gridColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	tempColor   = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	humidColor  = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	motionColor = color.RGBA{R: 0, G: 100, B: 200, A: 255}   // Dark blue
)

const (
	marginLeft   = float32(60)
	marginRight  = float32(60)
	marginTop    = float32(20)
	marginBottom = float32(40)
)

// renderer renders the trend widget.
type renderer struct {
	trend *Widget

	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	lastSize   fyne.Size
}

// plot is the drawing area.
type plot struct {
	x, y, w, h float32
	xMin, xMax time.Time
}

func (p plot) xAt(t time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x + p.w
	}
	return p.x + float32(t.Sub(p.xMin).Seconds()/span)*p.w
}

func (p plot) yAt(v float32, r Range) float32 {
	return p.y + p.h - r.Norm(v)*p.h
}

// MinSize returns the minimum size of the widget.
func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

// Layout arranges the widget components.
func (r *renderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

// Refresh redraws the chart.
func (r *renderer) Refresh() {
	r.trend.mu.RLock()
	points := r.trend.display
	temp := r.trend.temp
	humid := r.trend.humid
	p := plot{xMin: r.trend.xMin, xMax: r.trend.xMax}
	r.trend.mu.RUnlock()

	size := r.trend.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	p.x, p.y = marginLeft, marginTop
	p.w = size.Width - marginLeft - marginRight
	p.h = size.Height - marginTop - marginBottom

	r.drawGrid(p, temp, humid)
	r.drawMotion(p, points)
	r.drawSeries(p, points, temperatureOf, temp, tempColor)
	r.drawSeries(p, points, humidityOf, humid, humidColor)
	r.drawLegend(p, points)
}

// drawGrid draws the grid with temperature labels on the left axis and
// humidity labels on the right one.
func (r *renderer) drawGrid(p plot, temp, humid Range) {
	const numHLines = 6
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/numHLines
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		frac := float32(i) / numHLines
		left := temp.Max - frac*temp.Span()
		r.addText(fmt.Sprintf("%.1f°C", left), labelColor, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
		right := humid.Max - frac*humid.Span()
		r.addText(fmt.Sprintf("%.0f%%", right), labelColor, fyne.TextAlignLeading, fyne.NewPos(p.x+p.w+5, y-6))
	}

	const numVLines = 6
	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/numVLines
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		ago := span - time.Duration(float64(span)*float64(i)/numVLines)
		r.addText(formatAgo(ago), labelColor, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.h+5))
	}
}

// drawSeries draws one channel as connected segments.
func (r *renderer) drawSeries(p plot, points []Point, sel func(Point) float32, rng Range, c color.Color) {
	if len(points) < 2 {
		return
	}
	prev := fyne.NewPos(p.xAt(points[0].Timestamp), p.yAt(sel(points[0]), rng))
	for _, pt := range points[1:] {
		next := fyne.NewPos(p.xAt(pt.Timestamp), p.yAt(sel(pt), rng))
		r.addLine(c, 1.5, prev, next)
		prev = next
	}
}

// drawMotion marks every point with motion as a short tick on the time axis.
func (r *renderer) drawMotion(p plot, points []Point) {
	base := p.y + p.h
	for _, pt := range points {
		if !pt.Motion {
			continue
		}
		x := p.xAt(pt.Timestamp)
		r.addLine(motionColor, 2, fyne.NewPos(x, base), fyne.NewPos(x, base-10))
	}
}

func (r *renderer) drawLegend(p plot, points []Point) {
	if len(points) == 0 {
		r.addText("waiting for readings", labelColor, fyne.TextAlignLeading, fyne.NewPos(p.x+10, p.y+10))
		return
	}
	last := points[len(points)-1]
	r.addText(fmt.Sprintf("%.1f°C", last.Temperature), tempColor, fyne.TextAlignLeading, fyne.NewPos(p.x+10, p.y+5))
	r.addText(fmt.Sprintf("%.1f%%", last.Humidity), humidColor, fyne.TextAlignLeading, fyne.NewPos(p.x+80, p.y+5))
}

func (r *renderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *renderer) addText(s string, c color.Color, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, c)
	text.TextSize = 10
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *renderer) Destroy() {}

func formatAgo(d time.Duration) string {
	switch {
	case d <= 0:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("-%.0fs", d.Seconds())
	default:
		return fmt.Sprintf("-%.1fm", d.Minutes())
	}
}
