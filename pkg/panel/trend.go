package panel

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"

	"github.com/itohio/boostgauge/pkg/trend"
)

var (
	boostLineColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	oilLineColor   = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	eventColor     = color.RGBA{R: 0, G: 100, B: 200, A: 255}   // Dark blue
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	axisTextColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

// TrendWidget plots recent boost and oil temperature history with boost
// events marked.
type TrendWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu     sync.RWMutex
	points []trend.Point
	events []trend.Event

	// Auto-scaling
	boostMin, boostMax float64
	oilMin, oilMax     float64
	xMin, xMax         time.Time

	window    time.Duration
	maxPoints int
}

// NewTrend creates a trend widget spanning at least window and drawing at most
// maxPoints points.
func NewTrend(window time.Duration, maxPoints int) *TrendWidget {
	if maxPoints <= 0 {
		maxPoints = 400
	}
	t := &TrendWidget{
		points:    make([]trend.Point, 0, maxPoints),
		window:    window,
		maxPoints: maxPoints,
	}
	t.ExtendBaseWidget(t)
	t.updateAutoScale()
	return t
}

// UpdateData replaces the plotted history.
// This should be called from the history callback using fyne.Do().
func (t *TrendWidget) UpdateData(points []trend.Point, events []trend.Event) {
	t.mu.Lock()
	t.points = trend.Downsample(t.points, points, t.maxPoints)
	t.events = events
	t.updateAutoScale()
	t.mu.Unlock()

	t.Refresh()
}

// updateAutoScale must be called with t.mu held.
func (t *TrendWidget) updateAutoScale() {
	t.boostMin, t.boostMax = -10, 8
	t.oilMin, t.oilMax = 100, 300

	if len(t.points) == 0 {
		t.xMin = time.Now()
		t.xMax = t.xMin.Add(t.window)
		return
	}

	for _, p := range t.points {
		t.boostMin = min(t.boostMin, p.Boost)
		t.boostMax = max(t.boostMax, p.Boost)
		if p.OilValid {
			t.oilMin = min(t.oilMin, p.Oil)
			t.oilMax = max(t.oilMax, p.Oil)
		}
	}

	t.xMin = t.points[0].Timestamp
	t.xMax = t.points[len(t.points)-1].Timestamp
	if t.xMax.Sub(t.xMin) < t.window {
		t.xMax = t.xMin.Add(t.window)
	}
}

// CreateRenderer creates the widget renderer.
func (t *TrendWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &trendRenderer{
		trend:   t,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

// trendRenderer renders the trend widget.
type trendRenderer struct {
	trend *TrendWidget

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *trendRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 160)
}

// Layout arranges the widget components.
func (r *trendRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.trend.BaseWidget.Refresh()
	}
}

// plot is the drawing area of the trend and the scales mapped onto it.
type plot struct {
	x, y, w, h         float32
	xMin               time.Time
	span               float64
	boostMin, boostMax float64
	oilMin, oilMax     float64
}

func (p plot) timeX(ts time.Time) float32 {
	if p.span <= 0 {
		return p.x
	}
	return p.x + float32(ts.Sub(p.xMin).Seconds()/p.span)*p.w
}

func (p plot) valueY(v, lo, hi float64) float32 {
	if hi <= lo {
		return p.y + p.h
	}
	f := math32.Max(0, math32.Min(1, float32((v-lo)/(hi-lo))))
	return p.y + p.h - f*p.h
}

// Refresh updates the widget display.
func (r *trendRenderer) Refresh() {
	r.trend.mu.RLock()
	points := r.trend.points
	events := r.trend.events
	p := plot{
		xMin:     r.trend.xMin,
		span:     r.trend.xMax.Sub(r.trend.xMin).Seconds(),
		boostMin: r.trend.boostMin,
		boostMax: r.trend.boostMax,
		oilMin:   r.trend.oilMin,
		oilMax:   r.trend.oilMax,
	}
	r.trend.mu.RUnlock()

	size := r.trend.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	p.x, p.y = 50, 10
	p.w = size.Width - p.x - 50
	p.h = size.Height - p.y - 25

	r.drawGrid(p)
	r.drawEvents(p, events)
	r.drawLines(p, points)
}

func (r *trendRenderer) drawGrid(p plot) {
	const numHLines = 4
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/numHLines
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(p.x, y)
		line.Position2 = fyne.NewPos(p.x+p.w, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		frac := float64(i) / numHLines
		left := r.axisText(formatPSI(p.boostMax-frac*(p.boostMax-p.boostMin)), boostLineColor)
		left.Alignment = fyne.TextAlignTrailing
		left.Move(fyne.NewPos(p.x-5, y-6))

		right := r.axisText(formatFahrenheit(p.oilMax-frac*(p.oilMax-p.oilMin)), oilLineColor)
		right.Move(fyne.NewPos(p.x+p.w+5, y-6))
	}

	// Zero boost reference
	zero := canvas.NewLine(axisTextColor)
	zy := p.valueY(0, p.boostMin, p.boostMax)
	zero.Position1 = fyne.NewPos(p.x, zy)
	zero.Position2 = fyne.NewPos(p.x+p.w, zy)
	zero.StrokeWidth = 1
	r.objects = append(r.objects, zero)

	const numVLines = 6
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/numVLines
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, p.y)
		line.Position2 = fyne.NewPos(x, p.y+p.h)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		offset := time.Duration(float64(i) * p.span / numVLines * float64(time.Second))
		text := r.axisText(formatElapsed(offset), axisTextColor)
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
	}
}

func (r *trendRenderer) drawLines(p plot, points []trend.Point) {
	if len(points) < 2 {
		return
	}

	for i := range len(points) - 1 {
		a, b := points[i], points[i+1]

		line := canvas.NewLine(boostLineColor)
		line.Position1 = fyne.NewPos(p.timeX(a.Timestamp), p.valueY(a.Boost, p.boostMin, p.boostMax))
		line.Position2 = fyne.NewPos(p.timeX(b.Timestamp), p.valueY(b.Boost, p.boostMin, p.boostMax))
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)

		// Gaps where the thermistor was faulty
		if !a.OilValid || !b.OilValid {
			continue
		}
		oil := canvas.NewLine(oilLineColor)
		oil.Position1 = fyne.NewPos(p.timeX(a.Timestamp), p.valueY(a.Oil, p.oilMin, p.oilMax))
		oil.Position2 = fyne.NewPos(p.timeX(b.Timestamp), p.valueY(b.Oil, p.oilMin, p.oilMax))
		oil.StrokeWidth = 2.5
		r.objects = append(r.objects, oil)
	}
}

// drawEvents marks each boost event with start/end lines and its peak.
func (r *trendRenderer) drawEvents(p plot, events []trend.Event) {
	for _, e := range events {
		xStart := math32.Max(p.x, p.timeX(e.Start))
		xEnd := p.timeX(e.End)

		for _, x := range []float32{xStart, xEnd} {
			line := canvas.NewLine(eventColor)
			line.Position1 = fyne.NewPos(x, p.y)
			line.Position2 = fyne.NewPos(x, p.y+p.h)
			line.StrokeWidth = 1
			r.objects = append(r.objects, line)
		}

		text := canvas.NewText(formatPSI(e.Peak), boostLineColor)
		text.TextSize = 12
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos((xStart+xEnd)/2-30, p.valueY(e.Peak, p.boostMin, p.boostMax)-15))
		r.objects = append(r.objects, text)
	}
}

func (r *trendRenderer) axisText(s string, c color.Color) *canvas.Text {
	text := canvas.NewText(s, c)
	text.TextSize = 10
	r.objects = append(r.objects, text)
	return text
}

// Objects returns all canvas objects for rendering.
func (r *trendRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *trendRenderer) Destroy() {}
