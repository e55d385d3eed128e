package gauge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/boostgauge/pkg/sample"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		v    float64
		want ColorState
	}{
		{name: "disconnected", v: -40, want: Fault},
		{name: "just below zero", v: -0.001, want: Fault},
		{name: "NaN", v: math.NaN(), want: Fault},
		{name: "zero", v: 0, want: Cold},
		{name: "cold", v: 150, want: Cold},
		{name: "below normal", v: 199.999, want: Cold},
		{name: "normal lower bound", v: 200, want: Normal},
		{name: "normal", v: 230, want: Normal},
		{name: "below hot", v: 269.999, want: Normal},
		{name: "hot lower bound", v: 270, want: Hot},
		{name: "very hot", v: 400, want: Hot},
		{name: "infinite", v: math.Inf(1), want: Hot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.v, th))
		})
	}
}

func TestColorState_Color(t *testing.T) {
	assert.Equal(t, uint32(ColorWhite), Fault.Color())
	assert.Equal(t, uint32(ColorBlue), Cold.Color())
	assert.Equal(t, uint32(ColorWhite), Normal.Color())
	assert.Equal(t, uint32(ColorRed), Hot.Color())
	assert.Equal(t, "Normal", Normal.String())
	assert.Equal(t, "Unknown", ColorState(42).String())
}

func TestSideOf(t *testing.T) {
	assert.Equal(t, SideBoost, SideOf(0.1))
	assert.Equal(t, SideVacuum, SideOf(-0.1))
	assert.Equal(t, SideNone, SideOf(0))
}

func TestRange_Update(t *testing.T) {
	r := NewRange(8, -10)

	assert.False(t, r.Update(5))
	assert.False(t, r.Update(-5))
	assert.False(t, r.Update(0))
	assert.Equal(t, 8.0, r.MaxBoost)
	assert.Equal(t, -10.0, r.MaxVacuum)

	assert.True(t, r.Update(12.5))
	assert.Equal(t, 12.5, r.MaxBoost)

	assert.True(t, r.Update(-13))
	assert.Equal(t, -13.0, r.MaxVacuum)
}

func TestRange_Monotonic(t *testing.T) {
	r := NewRange(8, -10)
	readings := []float64{3, 9, -2, 15, -11, 4, -14, 0, 22, -1, 18, -13.5}

	prevBoost, prevVacuum := r.MaxBoost, r.MaxVacuum
	for _, v := range readings {
		r.Update(v)
		assert.GreaterOrEqual(t, r.MaxBoost, prevBoost)
		assert.LessOrEqual(t, r.MaxVacuum, prevVacuum)
		prevBoost, prevVacuum = r.MaxBoost, r.MaxVacuum
	}
	assert.Equal(t, 22.0, r.MaxBoost)
	assert.Equal(t, -14.0, r.MaxVacuum)
}

func TestRange_Reset(t *testing.T) {
	r := NewRange(8, -10)
	r.Update(20)
	r.Update(-12)

	r.Reset()
	assert.Equal(t, 8.0, r.MaxBoost)
	assert.Equal(t, -10.0, r.MaxVacuum)
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 80, BarWidth(5, 8, 128))
	assert.Equal(t, 64, BarWidth(-5, -10, 128))
	assert.Equal(t, 128, BarWidth(8, 8, 128))
	assert.Equal(t, 0, BarWidth(0, 8, 128))
	assert.Equal(t, 0, BarWidth(5, 0, 128))
	assert.Equal(t, 128, BarWidth(9, 8, 128), "clamped to the display")
	assert.Equal(t, 0, BarWidth(-1, 8, 128), "opposite sign yields an empty bar")
}

func TestFormatBoost(t *testing.T) {
	assert.Equal(t, "  5.0", FormatBoost(5))
	assert.Equal(t, " -5.0", FormatBoost(-5))
	assert.Equal(t, " 12.3", FormatBoost(12.34))
	assert.Equal(t, "  0.0", FormatBoost(0))
}

func TestBuildBoost_Positive(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRange(cfg.BoostSeed, cfg.VacuumSeed)

	out := BuildBoost(5.0, r, cfg)
	require.NotNil(t, out.Bars)
	assert.Equal(t, "  5.0", out.Text)
	assert.Equal(t, uint32(ColorWhite), out.Color)
	assert.Equal(t, 80, out.Bars.Boost.Width)
	assert.Equal(t, 0, out.Bars.Boost.X)
	assert.False(t, out.Bars.Boost.Hidden)
	assert.True(t, out.Bars.Vacuum.Hidden)
}

func TestBuildBoost_Vacuum(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRange(cfg.BoostSeed, cfg.VacuumSeed)

	out := BuildBoost(-5.0, r, cfg)
	require.NotNil(t, out.Bars)
	assert.Equal(t, 64, out.Bars.Vacuum.Width)
	assert.Equal(t, 64, out.Bars.Vacuum.X)
	assert.False(t, out.Bars.Vacuum.Hidden)
	assert.True(t, out.Bars.Boost.Hidden)
}

func TestBuildBoost_Zero(t *testing.T) {
	cfg := DefaultConfig()
	out := BuildBoost(0, NewRange(cfg.BoostSeed, cfg.VacuumSeed), cfg)

	require.NotNil(t, out.Bars)
	assert.True(t, out.Bars.Boost.Hidden)
	assert.True(t, out.Bars.Vacuum.Hidden)
	assert.Equal(t, 0, out.Bars.Boost.Width)
	assert.Equal(t, 0, out.Bars.Vacuum.Width)
}

func TestBuildBoost_NewPeakIsFullScale(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRange(cfg.BoostSeed, cfg.VacuumSeed)
	require.True(t, r.Update(14.2))

	out := BuildBoost(14.2, r, cfg)
	assert.Equal(t, cfg.DisplayWidth, out.Bars.Boost.Width)
}

func TestBuildBoost_Numeric(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumericBoost = true

	out := BuildBoost(7.3, NewRange(cfg.BoostSeed, cfg.VacuumSeed), cfg)
	assert.Nil(t, out.Bars)
	assert.Equal(t, "  7.3", out.Text)
}

func TestBuildOil(t *testing.T) {
	th := DefaultThresholds()
	w := sample.NewWindow(4)
	w.Seed(230)
	w.Push(234)

	out := BuildOil(234.7, false, w, th)
	assert.Equal(t, Normal, out.State)
	assert.Equal(t, uint32(ColorWhite), out.Color)
	assert.InDelta(t, 231.0, out.Damped, 1e-12)
	assert.Equal(t, "231", out.Text)
}

func TestBuildOil_ColorFollowsReading(t *testing.T) {
	w := sample.NewWindow(4)
	w.Seed(180)

	out := BuildOil(275, false, w, DefaultThresholds())
	assert.Equal(t, Hot, out.State)
	assert.Equal(t, uint32(ColorRed), out.Color)
	assert.Equal(t, "180", out.Text)
}

func TestBuildOil_Fault(t *testing.T) {
	w := sample.NewWindow(4)
	w.Seed(230)

	out := BuildOil(0, true, w, DefaultThresholds())
	assert.Equal(t, Fault, out.State)
	assert.Equal(t, FaultPlaceholder, out.Text)
	assert.Equal(t, uint32(ColorWhite), out.Color)

	out = BuildOil(-12, false, w, DefaultThresholds())
	assert.Equal(t, Fault, out.State)
	assert.Equal(t, FaultPlaceholder, out.Text)
}

func TestBuildOil_Unseeded(t *testing.T) {
	out := BuildOil(150, false, sample.NewWindow(4), DefaultThresholds())
	assert.Equal(t, Cold, out.State)
	assert.Equal(t, FaultPlaceholder, out.Text)
}

func TestConfig_Normalize(t *testing.T) {
	var cfg Config
	cfg.DisplayWidth = 160
	cfg.NumericBoost = true
	cfg.Normalize()

	def := DefaultConfig()
	assert.Equal(t, def.BoostPeriod, cfg.BoostPeriod)
	assert.Equal(t, def.OilPeriod, cfg.OilPeriod)
	assert.Equal(t, def.SampleWindowSize, cfg.SampleWindowSize)
	assert.Equal(t, def.Steinhart, cfg.Steinhart)
	assert.Equal(t, def.Thresholds, cfg.Thresholds)
	assert.Equal(t, 160, cfg.DisplayWidth)
	assert.True(t, cfg.NumericBoost)
	assert.Equal(t, 8.0, cfg.BoostSeed)
	assert.Equal(t, -10.0, cfg.VacuumSeed)
	assert.Zero(t, cfg.BoostOffset)
}
