// Package panel draws the gauge cluster with Fyne.
package panel

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/boostgauge/pkg/cluster"
	"github.com/itohio/boostgauge/pkg/gauge"
)

var _ cluster.Renderer = (*GaugeWidget)(nil)

// GaugeWidget shows the boost and oil temperature readouts.
//
// RenderBoost and RenderOil may be called from any goroutine; they only store
// the outputs. Call Refresh from the Fyne main thread to redraw.
type GaugeWidget struct {
	widget.BaseWidget

	// Logical width of the bars, in display pixels
	displayWidth int

	mu     sync.RWMutex
	boost  gauge.BoostOutput
	bars   gauge.Bars
	oil    gauge.OilOutput
	hasBar bool
	seen   struct{ boost, oil bool }
	status string
}

// New creates a gauge widget whose bars span displayWidth logical pixels.
func New(displayWidth int) *GaugeWidget {
	if displayWidth <= 0 {
		displayWidth = gauge.DefaultConfig().DisplayWidth
	}
	g := &GaugeWidget{displayWidth: displayWidth}
	g.ExtendBaseWidget(g)
	return g
}

// RenderBoost stores the latest boost output.
func (g *GaugeWidget) RenderBoost(out gauge.BoostOutput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.boost = out
	g.hasBar = out.Bars != nil
	if out.Bars != nil {
		g.bars = *out.Bars
	}
	g.boost.Bars = nil
	g.seen.boost = true
}

// RenderOil stores the latest oil output.
func (g *GaugeWidget) RenderOil(out gauge.OilOutput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.oil = out
	g.seen.oil = true
}

// SetStatus sets the status line under the gauges.
func (g *GaugeWidget) SetStatus(s string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = s
}

type gaugeState struct {
	boost     gauge.BoostOutput
	bars      gauge.Bars
	hasBar    bool
	oil       gauge.OilOutput
	haveBoost bool
	haveOil   bool
	status    string
}

func (g *GaugeWidget) snapshot() gaugeState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return gaugeState{
		boost:     g.boost,
		bars:      g.bars,
		hasBar:    g.hasBar,
		oil:       g.oil,
		haveBoost: g.seen.boost,
		haveOil:   g.seen.oil,
		status:    g.status,
	}
}

// CreateRenderer creates the widget renderer.
func (g *GaugeWidget) CreateRenderer() fyne.WidgetRenderer {
	return newGaugeRenderer(g)
}

// rgb converts a 0xRRGGBB display color.
func rgb(c uint32) color.NRGBA {
	return color.NRGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}
