package gauge

import "math"

// ColorState is the display state of the oil temperature readout.
type ColorState int

const (
	Fault ColorState = iota
	Cold
	Normal
	Hot
)

// Display colors, 0xRRGGBB.
const (
	ColorWhite = 0xffffff
	ColorBlue  = 0x3040ff
	ColorRed   = 0xff2020
	ColorBlack = 0x000000
	ColorLabel = 0xff0303
)

func (s ColorState) String() string {
	switch s {
	case Fault:
		return "Fault"
	case Cold:
		return "Cold"
	case Normal:
		return "Normal"
	case Hot:
		return "Hot"
	default:
		return "Unknown"
	}
}

// Color returns the readout color for the state.
func (s ColorState) Color() uint32 {
	switch s {
	case Cold:
		return ColorBlue
	case Hot:
		return ColorRed
	default:
		return ColorWhite
	}
}

// Thresholds are the lower bounds (°F) of the Normal and Hot bands.
type Thresholds struct {
	Normal float64 `yaml:"normal"`
	Hot    float64 `yaml:"hot"`
}

// DefaultThresholds returns the stock oil temperature bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Normal: 200,
		Hot:    270,
	}
}

// Classify maps an oil temperature to its display state.
// Negative and NaN readings mean a disconnected sensor.
func Classify(v float64, t Thresholds) ColorState {
	switch {
	case math.IsNaN(v) || v < 0:
		return Fault
	case v < t.Normal:
		return Cold
	case v < t.Hot:
		return Normal
	default:
		return Hot
	}
}

// Side tells which boost bar a reading belongs to.
type Side int

const (
	SideNone Side = iota
	SideBoost
	SideVacuum
)

func (s Side) String() string {
	switch s {
	case SideBoost:
		return "boost"
	case SideVacuum:
		return "vacuum"
	default:
		return "none"
	}
}

// SideOf returns SideBoost for positive pressure, SideVacuum for negative
// pressure and SideNone at exactly atmospheric.
func SideOf(v float64) Side {
	switch {
	case v > 0:
		return SideBoost
	case v < 0:
		return SideVacuum
	default:
		return SideNone
	}
}
