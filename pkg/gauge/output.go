package gauge

import (
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"

	"github.com/itohio/boostgauge/pkg/sample"
)

// FaultPlaceholder is shown instead of the oil temperature when no valid
// average exists.
const FaultPlaceholder = "- - "

// Bar describes one horizontal bar of the boost gauge.
type Bar struct {
	Width  int  `json:"width"`
	X      int  `json:"x"`
	Hidden bool `json:"hidden"`
}

// Bars is the pair of bars drawn under the boost readout.
type Bars struct {
	Boost  Bar `json:"boost"`
	Vacuum Bar `json:"vacuum"`
}

// BoostOutput is what the renderer needs to draw the boost gauge.
type BoostOutput struct {
	Value float64 `json:"value"` // psi
	Text  string  `json:"text"`
	Color uint32  `json:"color"`
	Bars  *Bars   `json:"bars,omitempty"` // nil in numeric-only mode
}

// OilOutput is what the renderer needs to draw the oil temperature gauge.
type OilOutput struct {
	Value  float64    `json:"value"`  // instantaneous °F
	Damped float64    `json:"damped"` // window average °F
	Text   string     `json:"text"`
	State  ColorState `json:"state"`
	Color  uint32     `json:"color"`
}

// FormatBoost formats a boost reading as a fixed width readout.
func FormatBoost(v float64) string {
	return fmt.Sprintf("%5.1f", v)
}

// BarWidth scales value against max onto a bar of at most width pixels.
// value and max must share a sign; a zero max yields an empty bar.
func BarWidth(value, max float64, width int) int {
	if max == 0 {
		return 0
	}
	w := int(math.Floor(value / max * float64(width)))
	return lo.Clamp(w, 0, width)
}

// BuildBoost assembles the boost gauge output. The range must already include v.
func BuildBoost(v float64, r Range, cfg Config) BoostOutput {
	out := BoostOutput{
		Value: v,
		Text:  FormatBoost(v),
		Color: ColorWhite,
	}
	if cfg.NumericBoost {
		return out
	}

	bars := &Bars{
		Boost:  Bar{Hidden: true},
		Vacuum: Bar{Hidden: true, X: cfg.DisplayWidth},
	}
	switch SideOf(v) {
	case SideBoost:
		bars.Boost.Width = BarWidth(v, r.MaxBoost, cfg.DisplayWidth)
		bars.Boost.Hidden = false
	case SideVacuum:
		bars.Vacuum.Width = BarWidth(v, r.MaxVacuum, cfg.DisplayWidth)
		bars.Vacuum.X = cfg.DisplayWidth - bars.Vacuum.Width
		bars.Vacuum.Hidden = false
	}
	out.Bars = bars
	return out
}

// BuildOil assembles the oil gauge output. fault marks a reading that could
// not be converted; the window must already include a valid reading.
func BuildOil(v float64, fault bool, w *sample.Window, t Thresholds) OilOutput {
	state := Fault
	if !fault {
		state = Classify(v, t)
	}

	out := OilOutput{
		Value: v,
		Text:  FaultPlaceholder,
		State: state,
		Color: state.Color(),
	}
	if state != Fault && w.Seeded() {
		out.Damped = w.Damped()
		out.Text = strconv.Itoa(int(out.Damped))
	}
	return out
}
