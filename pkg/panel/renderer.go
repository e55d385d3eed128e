package panel

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"

	"github.com/itohio/boostgauge/pkg/gauge"
)

const (
	captionSize = float32(14)
	statusSize  = float32(11)
	padding     = float32(8)
)

// gaugeRenderer renders the gauge widget. The boost gauge takes the top half,
// the oil gauge the bottom half, and the status line sits at the very bottom.
type gaugeRenderer struct {
	gauge *GaugeWidget

	background *canvas.Rectangle

	boostCaption *canvas.Text
	boostText    *canvas.Text
	boostUnit    *canvas.Text
	boostBar     *canvas.Rectangle
	vacuumBar    *canvas.Rectangle

	oilCaption *canvas.Text
	oilText    *canvas.Text
	oilUnit    *canvas.Text

	status *canvas.Text

	objects []fyne.CanvasObject
}

func newGaugeRenderer(g *GaugeWidget) *gaugeRenderer {
	label := rgb(gauge.ColorLabel)

	r := &gaugeRenderer{
		gauge:        g,
		background:   canvas.NewRectangle(rgb(gauge.ColorBlack)),
		boostCaption: canvas.NewText("BOOST", label),
		boostText:    canvas.NewText("", rgb(gauge.ColorWhite)),
		boostUnit:    canvas.NewText("psi", rgb(gauge.ColorWhite)),
		boostBar:     canvas.NewRectangle(rgb(gauge.ColorWhite)),
		vacuumBar:    canvas.NewRectangle(rgb(gauge.ColorWhite)),
		oilCaption:   canvas.NewText("OIL TEMP", label),
		oilText:      canvas.NewText("", rgb(gauge.ColorWhite)),
		oilUnit:      canvas.NewText("°F", rgb(gauge.ColorWhite)),
		status:       canvas.NewText("", rgb(0x969696)),
	}

	for _, t := range []*canvas.Text{r.boostCaption, r.oilCaption} {
		t.TextSize = captionSize
		t.TextStyle = fyne.TextStyle{Bold: true}
	}
	for _, t := range []*canvas.Text{r.boostText, r.oilText} {
		t.TextStyle = fyne.TextStyle{Monospace: true, Bold: true}
		t.Alignment = fyne.TextAlignTrailing
	}
	r.status.TextSize = statusSize

	r.objects = []fyne.CanvasObject{
		r.background,
		r.boostCaption, r.boostText, r.boostUnit, r.boostBar, r.vacuumBar,
		r.oilCaption, r.oilText, r.oilUnit,
		r.status,
	}
	r.sync()
	return r
}

// MinSize returns the minimum size of the widget.
func (r *gaugeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(256, 240)
}

// Layout arranges the widget components.
func (r *gaugeRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	half := (size.Height - statusSize - 2*padding) / 2
	valueSize := valueTextSize(half)

	// Boost half
	r.boostCaption.Move(fyne.NewPos(padding, padding))
	r.boostUnit.TextSize = valueSize / 3
	unitWidth := math32.Max(r.boostUnit.MinSize().Width, valueSize)
	r.boostUnit.Move(fyne.NewPos(size.Width-padding-unitWidth, padding+captionSize+valueSize*2/3))
	r.boostText.TextSize = valueSize
	r.boostText.Resize(fyne.NewSize(size.Width-2*padding-unitWidth-padding, valueSize*1.3))
	r.boostText.Move(fyne.NewPos(padding, padding+captionSize))

	// Oil half
	top := half + padding
	r.oilCaption.Move(fyne.NewPos(padding, top))
	r.oilUnit.TextSize = valueSize / 3
	r.oilUnit.Move(fyne.NewPos(size.Width-padding-unitWidth, top+captionSize+valueSize*2/3))
	r.oilText.TextSize = valueSize
	r.oilText.Resize(fyne.NewSize(size.Width-2*padding-unitWidth-padding, valueSize*1.3))
	r.oilText.Move(fyne.NewPos(padding, top+captionSize))

	r.status.Move(fyne.NewPos(padding, size.Height-statusSize-padding))

	r.layoutBars(size, half)
}

func (r *gaugeRenderer) layoutBars(size fyne.Size, half float32) {
	st := r.gauge.snapshot()
	area := fyne.NewSize(size.Width-2*padding, barHeight(half))
	top := half - area.Height - padding

	pos, sz := barRect(st.bars.Boost, r.gauge.displayWidth, area)
	r.boostBar.Move(pos.Add(fyne.NewPos(padding, top)))
	r.boostBar.Resize(sz)

	pos, sz = barRect(st.bars.Vacuum, r.gauge.displayWidth, area)
	r.vacuumBar.Move(pos.Add(fyne.NewPos(padding, top)))
	r.vacuumBar.Resize(sz)
}

// Refresh updates the widget display.
func (r *gaugeRenderer) Refresh() {
	r.sync()

	if size := r.gauge.Size(); size.Width > 0 && size.Height > 0 {
		r.Layout(size)
	}
	for _, o := range r.objects {
		o.Refresh()
	}
}

// sync copies the latest outputs into the canvas objects.
func (r *gaugeRenderer) sync() {
	st := r.gauge.snapshot()

	// Nothing is drawn for a gauge before its first refresh
	r.boostText.Hidden = !st.haveBoost
	r.boostText.Text = st.boost.Text
	r.boostText.Color = rgb(st.boost.Color)

	r.boostBar.Hidden = !st.hasBar || st.bars.Boost.Hidden
	r.boostBar.FillColor = rgb(st.boost.Color)
	r.vacuumBar.Hidden = !st.hasBar || st.bars.Vacuum.Hidden
	r.vacuumBar.FillColor = rgb(st.boost.Color)

	r.oilText.Hidden = !st.haveOil
	r.oilText.Text = st.oil.Text
	r.oilText.Color = rgb(st.oil.Color)
	r.oilUnit.Hidden = !st.haveOil
	r.oilUnit.Color = rgb(st.oil.Color)

	r.status.Text = st.status
}

// Objects returns all canvas objects for rendering.
func (r *gaugeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *gaugeRenderer) Destroy() {}

// valueTextSize fits the large readout into one gauge half.
func valueTextSize(half float32) float32 {
	return math32.Max(16, math32.Floor(half*0.45))
}

func barHeight(half float32) float32 {
	return math32.Max(4, math32.Floor(half*0.12))
}

// barRect maps a bar in logical display pixels onto area.
func barRect(b gauge.Bar, displayWidth int, area fyne.Size) (fyne.Position, fyne.Size) {
	if displayWidth <= 0 || b.Hidden || b.Width <= 0 {
		return fyne.NewPos(0, 0), fyne.NewSize(0, 0)
	}

	scale := area.Width / float32(displayWidth)
	x := math32.Max(0, float32(b.X)*scale)
	w := math32.Min(float32(b.Width)*scale, area.Width-x)
	return fyne.NewPos(x, 0), fyne.NewSize(w, area.Height)
}
